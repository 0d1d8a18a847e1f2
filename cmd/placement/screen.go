package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/BinitGoswami/my-placement/internal/guard"
	"github.com/BinitGoswami/my-placement/internal/model"
)

// Commands declare the screen they stand for in this annotation. Commands
// without one (health, help) are not gated.
const screenAnnotation = "screen"

// Annotation values besides literal screen names.
const (
	screenSignedIn = "signed-in"
	screenResource = "resource"
)

func screenOf(name string) map[string]string {
	return map[string]string{screenAnnotation: name}
}

// resolveScreen returns the access rule of cmd. Resource commands take the
// rule of the resource named by their first argument.
func resolveScreen(cmd *cobra.Command, args []string) (guard.Screen, bool, error) {
	name, ok := cmd.Annotations[screenAnnotation]
	if !ok {
		return guard.Screen{}, false, nil
	}
	switch name {
	case screenSignedIn:
		return guard.Authenticated(cmd.Name()), true, nil
	case screenResource:
		if len(args) == 0 {
			return guard.Screen{}, false, fmt.Errorf("%s requires a resource name", cmd.Name())
		}
		res, err := lookupResource(args[0])
		if err != nil {
			return guard.Screen{}, false, err
		}
		return guard.ForResource(res), true, nil
	}
	scr, ok := guard.Resolve(name)
	if !ok {
		return guard.Screen{}, false, fmt.Errorf("unknown screen %q", name)
	}
	return scr, true, nil
}

// gate refuses to run cmd unless the current session may see its screen.
func gate(cmd *cobra.Command, args []string) error {
	scr, ok, err := resolveScreen(cmd, args)
	if err != nil || !ok {
		return err
	}
	sess := sessions.Get()
	d := guard.Evaluate(sess, scr)
	if d.Allow {
		return nil
	}
	logger.Debug("command refused", "command", cmd.Name(), "screen", scr.Name, "reason", d.Reason)
	switch d.Reason {
	case guard.ReasonUnauthenticated:
		return fmt.Errorf("not signed in, run `placement login` first")
	case guard.ReasonAlreadyAuthenticated:
		return fmt.Errorf("already signed in as %s, run `placement logout` first", displayName(sess))
	case guard.ReasonWrongRole:
		return fmt.Errorf("%s is not available to %s accounts", scr.Name, sess.Role)
	}
	return fmt.Errorf("%s is not available", scr.Name)
}

func lookupResource(name string) (model.Resource, error) {
	res, ok := model.Lookup(name)
	if !ok {
		return model.Resource{}, fmt.Errorf("unknown resource %q (see `placement resources`)", name)
	}
	return res, nil
}

func displayName(sess *model.Session) string {
	if sess == nil {
		return ""
	}
	if sess.Name != "" {
		return sess.Name
	}
	return sess.Identity.String()
}

func isInteractive(cmd *cobra.Command) bool {
	return cmd.Name() == "browse"
}

func defaultLogFile(stateDir string) string {
	return filepath.Join(stateDir, "placement.log")
}
