// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/invowk/intentkit/internal/hostsim"
	"github.com/invowk/intentkit/internal/issue"
	"github.com/invowk/intentkit/pkg/intent"

	"github.com/spf13/cobra"
)

const (
	// defaultRequestCode seeds the request codes of tracked launches that do not
	// name one with --request-code.
	defaultRequestCode int32 = 1

	// pickedURI is the content the simulated picker returns.
	pickedURI = "content://intentkit.sim/picked/1"
)

type simFlags struct {
	resultCode int32
	noData     bool
	metrics    bool
}

// newSimCommand creates the `intentkit sim` command tree.
func newSimCommand(app *App) *cobra.Command {
	sf := &simFlags{}
	simCmd := &cobra.Command{
		Use:   "sim",
		Short: "Launch intents against a simulated host",
		Long: `Launch intents against a simulated host.

The simulated host implements the same foreign interface as the device runtime.
Each command builds an intent through it, launches it from the simulated root
activity and prints the intent the host received. Tracked launches are answered
by the host and the completion is polled like on a device.

` + SubtitleStyle.Render("Examples:") + `
  intentkit sim send --text "Hello World!" --chooser --title "Share with"
  intentkit sim send --text hi --request-code 42 --wait
  intentkit sim view https://example.com --category default --grant-read
  intentkit sim pick --type "image/*" --result-code 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := simCmd.PersistentFlags()
	pf.Int32Var(&sf.resultCode, "result-code", 0, "result code the host reports, -1 OK and 0 canceled (default simulator.result_code)")
	pf.BoolVar(&sf.noData, "no-data", false, "complete tracked launches without a payload")
	pf.BoolVar(&sf.metrics, "metrics", false, "print dispatch and poll counters after the session")

	simCmd.AddCommand(newSimSendCommand(app, sf))
	simCmd.AddCommand(newSimViewCommand(app, sf))
	simCmd.AddCommand(newSimPickCommand(app, sf))
	return simCmd
}

func newSimSendCommand(app *App, sf *simFlags) *cobra.Command {
	var (
		text, subject, mime, title string
		extras                     []string
		chooser, wait              bool
		requestCode                int32
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Share text with ACTION_SEND",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimSession(cmd, app, sf)
			if err != nil {
				return err
			}

			kv, err := parseExtras(extras)
			if err != nil {
				return app.fail(cmd, s.cfg, ExitUsage, err)
			}
			tracked := wait || cmd.Flags().Changed("request-code")
			if tracked && !cmd.Flags().Changed("request-code") {
				requestCode = s.codes.Next()
			}

			out, err := s.run(cmd.Context(), func(acc *intent.Accessor) *intent.Intent {
				in := intent.New(acc, intent.ActionSend).
					WithExtra(intent.ExtraText, text).
					WithType(mime)
				if subject != "" {
					in.WithExtra(intent.ExtraSubject, subject)
				}
				for _, e := range kv {
					in.WithExtra(intent.Extra(e[0]), e[1])
				}
				if title != "" {
					in.IntoChooserWithTitle(title)
				} else if chooser {
					in.IntoChooser()
				}
				return in
			}, launchMode{tracked: tracked, requestCode: requestCode, wait: wait})
			return s.finish(cmd, out, err, "send intent", string(intent.ActionSend))
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "text to share (android.intent.extra.TEXT)")
	cmd.Flags().StringVar(&subject, "subject", "", "subject line (android.intent.extra.SUBJECT)")
	cmd.Flags().StringVar(&mime, "type", "text/plain", "MIME type of the shared content")
	cmd.Flags().StringArrayVar(&extras, "extra", nil, "additional string extra as key=value (repeatable)")
	cmd.Flags().BoolVar(&chooser, "chooser", false, "wrap the intent in a chooser")
	cmd.Flags().StringVar(&title, "title", "", "chooser title (implies --chooser)")
	cmd.Flags().Int32Var(&requestCode, "request-code", 0, "launch tracked with this request code")
	cmd.Flags().BoolVar(&wait, "wait", false, "launch tracked and wait for the result")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newSimViewCommand(app *App, sf *simFlags) *cobra.Command {
	var (
		categories []string
		grantRead  bool
	)

	cmd := &cobra.Command{
		Use:   "view <uri>",
		Short: "Open a URI with ACTION_VIEW",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimSession(cmd, app, sf)
			if err != nil {
				return err
			}

			cats := make([]intent.Category, 0, len(categories))
			for _, name := range categories {
				c, perr := intent.ParseCategory(name)
				if perr != nil {
					return app.fail(cmd, s.cfg, ExitUsage, intentFailure("parse --category", name, perr))
				}
				cats = append(cats, c)
			}

			uri := args[0]
			out, err := s.run(cmd.Context(), func(acc *intent.Accessor) *intent.Intent {
				in := intent.NewWithTarget(acc, intent.ActionView, uri)
				for _, c := range cats {
					in.AddCategory(c)
				}
				if grantRead {
					in.AddFlags(intent.FlagGrantReadURIPermission)
				}
				return in
			}, launchMode{})
			return s.finish(cmd, out, err, "view", uri)
		},
	}

	cmd.Flags().StringArrayVar(&categories, "category", nil, "category to add, e.g. default or openable (repeatable)")
	cmd.Flags().BoolVar(&grantRead, "grant-read", false, "grant read permission on the URI")
	return cmd
}

func newSimPickCommand(app *App, sf *simFlags) *cobra.Command {
	var (
		mime        string
		requestCode int32
	)

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick openable content with ACTION_GET_CONTENT and wait for it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSimSession(cmd, app, sf)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("request-code") {
				requestCode = s.codes.Next()
			}
			if s.withData {
				s.host.SetResponder(hostsim.ReplyWith(s.resultCode, &hostsim.IntentSnapshot{
					Data: pickedURI,
					Type: mime,
				}))
			}

			out, err := s.run(cmd.Context(), func(acc *intent.Accessor) *intent.Intent {
				return intent.New(acc, intent.ActionGetContent).
					WithType(mime).
					AddCategory(intent.CategoryOpenable).
					AddFlags(intent.FlagGrantReadURIPermission)
			}, launchMode{tracked: true, requestCode: requestCode, wait: true})
			return s.finish(cmd, out, err, "pick content", mime)
		},
	}

	cmd.Flags().StringVar(&mime, "type", "*/*", "MIME type of the content to pick")
	cmd.Flags().Int32Var(&requestCode, "request-code", 0, "request code of the launch")
	return cmd
}

// parseExtras splits key=value pairs. Keys must be non-empty; values may be.
func parseExtras(pairs []string) ([][2]string, error) {
	out := make([][2]string, 0, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, issue.NewErrorContext().
				WithOperation("parse --extra").
				WithResource(p).
				WithSuggestion("Give extras as --extra key=value").
				WithIssue(issue.InvalidFlagValueId).
				Wrap(fmt.Errorf("expected key=value, got %q", p)).
				BuildError()
		}
		out = append(out, [2]string{key, value})
	}
	return out, nil
}
