// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"math/bits"
	"strings"

	"github.com/invowk/intentkit/pkg/intent"

	"github.com/spf13/cobra"
)

// newCatalogCommand creates the `intentkit catalog` command.
func newCatalogCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List known actions, categories, flags and extras",
		Long: `List the symbolic names intentkit resolves against the intent class.

Actions and categories are looked up as static String fields, flags as static
int fields named FLAG_<NAME>. Short forms are accepted wherever a name is
expected: "send" for ACTION_SEND, "openable" for CATEGORY_OPENABLE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writeCatalog(app.stdout)
			return nil
		},
	}
}

func writeCatalog(w io.Writer) {
	fmt.Fprintln(w, TitleStyle.Render("Intent catalog"))

	fmt.Fprintln(w, sectionStyle.Render("Actions"))
	for _, a := range intent.Actions() {
		fmt.Fprintf(w, "  %-34s %s\n", CmdStyle.Render(a.String()), SubtitleStyle.Render(shortName("ACTION_", a.String())))
	}

	fmt.Fprintln(w, sectionStyle.Render("Categories"))
	for _, c := range intent.Categories() {
		fmt.Fprintf(w, "  %-34s %s\n", CmdStyle.Render(c.String()), SubtitleStyle.Render(shortName("CATEGORY_", c.String())))
	}

	fmt.Fprintln(w, sectionStyle.Render("Flags"))
	for _, f := range intent.AllFlags() {
		name, _ := f.Name()
		fmt.Fprintf(w, "  %-34s bit %d  %s\n",
			CmdStyle.Render("FLAG_"+name),
			bits.TrailingZeros32(uint32(f)),
			SubtitleStyle.Render(shortName("", name)))
	}

	fmt.Fprintln(w, sectionStyle.Render("Extras"))
	for _, e := range intent.Extras() {
		fmt.Fprintf(w, "  %s\n", CmdStyle.Render(e.String()))
	}
}

// shortName renders a constant name the way the parsers accept it in flags.
func shortName(prefix, name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(name, prefix), "_", "-"))
}
