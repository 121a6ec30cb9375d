// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/invowk/intentkit/internal/config"
	"github.com/invowk/intentkit/internal/hostsim"
	"github.com/invowk/intentkit/internal/metrics"
	"github.com/invowk/intentkit/pkg/intent"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

type (
	// launchMode selects how a session hands its intent to the activity.
	launchMode struct {
		tracked     bool
		requestCode int32
		wait        bool
	}

	// simSession is one run of a builder chain against a fresh simulated host.
	simSession struct {
		app      *App
		cfg      *config.Config
		host     *hostsim.Host
		registry *prometheus.Registry
		metrics  *metrics.Collector
		logger   *log.Logger
		codes    *intent.RequestCodes

		resultCode  int32
		withData    bool
		showMetrics bool
	}

	sessionResult struct {
		awaited    bool
		completion *completionReport
	}

	// completionReport holds what was read from a polled completion while the
	// accessor was still live.
	completionReport struct {
		requestCode int32
		resultCode  int32
		data        string
		hasData     bool
		text        string
		hasText     bool
	}
)

// newSimSession loads the configuration and prepares a simulated host for it.
// Failures are already reported when it returns.
func newSimSession(cmd *cobra.Command, app *App, sf *simFlags) (*simSession, error) {
	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return nil, app.fail(cmd, nil, ExitFailure, err)
	}

	s := &simSession{
		app: app,
		cfg: cfg,
		host: hostsim.New(hostsim.Options{
			IntentClass: string(cfg.Host.IntentClass),
			URIClass:    string(cfg.Host.URIClass),
			ResultClass: string(cfg.Host.ResultClass),
		}),
		registry:    prometheus.NewRegistry(),
		logger:      app.newLogger(cfg),
		codes:       intent.NewRequestCodes(defaultRequestCode),
		resultCode:  cfg.Simulator.ResultCode,
		withData:    cfg.Simulator.ReplyWithData && !sf.noData,
		showMetrics: sf.metrics,
	}
	if cmd.Flags().Changed("result-code") {
		s.resultCode = sf.resultCode
	}

	s.metrics, err = metrics.New(s.registry)
	if err != nil {
		return nil, app.fail(cmd, cfg, ExitFailure, err)
	}
	s.host.SetResponder(echoResponder(s.resultCode, s.withData))
	return s, nil
}

// echoResponder answers tracked launches with resultCode and, when withData is
// set, a copy of the launched intent.
func echoResponder(resultCode int32, withData bool) hostsim.Responder {
	if !withData {
		return hostsim.ReplyWith(resultCode, nil)
	}
	return func(l hostsim.Launch) (hostsim.Completion, bool) {
		c, ok := hostsim.Echo(l)
		c.ResultCode = resultCode
		return c, ok
	}
}

// run builds an intent on a fresh accessor, launches it and, in wait mode,
// polls for its completion.
func (s *simSession) run(ctx context.Context, build func(acc *intent.Accessor) *intent.Intent, mode launchMode) (*sessionResult, error) {
	res := &sessionResult{}
	err := intent.WithCurrentEnv(func(acc *intent.Accessor) error {
		in := build(acc)
		action := in.Action()

		if mode.tracked {
			if err := in.StartActivityForResult(mode.requestCode); err != nil {
				return err
			}
			s.logger.Info("intent launched", "action", action, "request_code", mode.requestCode)
		} else {
			if err := in.StartActivity(); err != nil {
				return err
			}
			s.logger.Info("intent launched", "action", action)
		}

		if !mode.wait {
			return nil
		}
		res.awaited = true
		done, err := s.await(ctx, acc)
		if err != nil || done == nil {
			return err
		}
		res.completion, err = readCompletion(done)
		return err
	},
		intent.WithHost(s.host.Context()),
		intent.WithClasses(s.cfg.Host.Classes()),
		intent.WithLogger(s.logger.WithPrefix("intent")),
		intent.WithObserver(s.metrics),
	)
	return res, err
}

func (s *simSession) await(ctx context.Context, acc *intent.Accessor) (*intent.CompletedIntent, error) {
	if timeout := s.cfg.Poll.Timeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	limiter := intent.NewPollLimiter(s.cfg.Poll.Interval.Std(), s.cfg.Poll.Burst)
	return intent.AwaitResult(ctx, acc, limiter)
}

func readCompletion(done *intent.CompletedIntent) (*completionReport, error) {
	r := &completionReport{requestCode: done.RequestCode, resultCode: done.ResultCode}
	defer done.Data.Release()

	var err error
	if r.data, r.hasData, err = done.Data.DataString(); err != nil {
		return nil, err
	}
	if r.text, r.hasText, err = done.Data.StringExtra(intent.ExtraText); err != nil {
		return nil, err
	}
	return r, nil
}

// finish prints what the host observed, then the error or the completion.
func (s *simSession) finish(cmd *cobra.Command, res *sessionResult, err error, op, resource string) error {
	w := s.app.stdout
	for _, l := range s.host.Launches() {
		writeLaunch(w, l)
	}
	if err != nil {
		return s.app.fail(cmd, s.cfg, ExitFailure, intentFailure(op, resource, err))
	}

	canceled := false
	if res.awaited {
		writeCompletion(w, res.completion)
		canceled = res.completion != nil && res.completion.resultCode == hostsim.ResultCanceled
	}
	if s.showMetrics {
		fmt.Fprintln(w, sectionStyle.Render("Metrics"))
		if merr := metrics.WriteText(w, s.registry); merr != nil {
			return s.app.fail(cmd, s.cfg, ExitFailure, merr)
		}
	}
	if canceled {
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return &ExitError{Code: ExitCanceled}
	}
	return nil
}

func writeLaunch(w io.Writer, l hostsim.Launch) {
	heading := "Launch"
	if l.Tracked {
		heading = fmt.Sprintf("Launch (request code %d)", l.RequestCode)
	}
	fmt.Fprintln(w, sectionStyle.Render(heading))
	writeSnapshot(w, "  ", l.Intent)
}

func writeSnapshot(w io.Writer, indent string, s hostsim.IntentSnapshot) {
	field := func(key, value string) {
		fmt.Fprintf(w, "%s%s %s\n", indent, CmdStyle.Render(key+":"), value)
	}

	field("action", s.Action)
	if s.Data != "" {
		field("data", s.Data)
	}
	if s.Type != "" {
		field("type", s.Type)
	}
	if len(s.Categories) > 0 {
		field("categories", strings.Join(s.Categories, ", "))
	}
	if s.Flags != 0 {
		field("flags", fmt.Sprintf("%#x", uint32(s.Flags)))
	}
	if len(s.Extras) > 0 {
		keys := make([]string, 0, len(s.Extras))
		for k := range s.Extras {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		fmt.Fprintf(w, "%s%s\n", indent, CmdStyle.Render("extras:"))
		for _, k := range keys {
			fmt.Fprintf(w, "%s  %s = %q\n", indent, k, s.Extras[k])
		}
	}
	if s.HasTitle {
		field("title", s.Title)
	}
	if s.Target != nil {
		fmt.Fprintf(w, "%s%s\n", indent, CmdStyle.Render("target:"))
		writeSnapshot(w, indent+"  ", *s.Target)
	}
}

func writeCompletion(w io.Writer, r *completionReport) {
	fmt.Fprintln(w, sectionStyle.Render("Result"))
	if r == nil {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("completed without data"))
		return
	}

	fmt.Fprintf(w, "  %s %d\n", CmdStyle.Render("request code:"), r.requestCode)
	fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render("result code:"), resultCodeLabel(r.resultCode))
	if r.hasData {
		fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render("data:"), r.data)
	}
	if r.hasText {
		fmt.Fprintf(w, "  %s %q\n", CmdStyle.Render("text:"), r.text)
	}
}

func resultCodeLabel(code int32) string {
	switch code {
	case hostsim.ResultOK:
		return SuccessStyle.Render(fmt.Sprintf("%d (OK)", code))
	case hostsim.ResultCanceled:
		return WarningStyle.Render(fmt.Sprintf("%d (CANCELED)", code))
	default:
		return fmt.Sprintf("%d", code)
	}
}
