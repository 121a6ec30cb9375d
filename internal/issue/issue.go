// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	HostContextMissingId Id = iota + 1
	AttachFailedId
	UnknownSymbolId
	MalformedURIId
	AllocationFailedId
	MutationFailedId
	DispatchFailedId
	RetrievalFailedId
	InvalidClassesId
	ConfigLoadFailedId
	InvalidFlagValueId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue markdown, followed by its links, with the glamour
// style at stylePath ("dark", "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	hostContextMissingIssue = &Issue{
		id: HostContextMissingId,
		mdMsg: `
# No host context installed!

The intent bridge needs the runtime entry point and the root activity before it
can do anything. Nothing has published them yet.

## Things you can try:
- Install the host context once, early in process start-up, before the first
  ` + "`intent.Acquire`" + ` call
- In tests, pass the context explicitly with ` + "`intent.WithHost`" + `
- Off-device, use the simulated host:
~~~
$ intentkit sim send --text "Hello World!"
~~~`,
		extLinks: []HttpLink{"https://developer.android.com/training/articles/perf-jni"},
	}

	attachFailedIssue = &Issue{
		id: AttachFailedId,
		mdMsg: `
# Could not attach the thread to the runtime!

The current OS thread could not be attached, or could not be detached again.

## Things you can try:
- Make sure the runtime is still alive when the accessor is created
- Release every accessor on the goroutine that attached it, innermost first
- Run with ` + "`--verbose`" + ` to see the attach and detach calls`,
	}

	unknownSymbolIssue = &Issue{
		id: UnknownSymbolId,
		mdMsg: `
# Unknown action, category or flag!

A symbolic name could not be resolved to a constant of the intent class.

## Things you can try:
- List the names intentkit knows about:
~~~
$ intentkit catalog
~~~
- Short forms are accepted: ` + "`send`" + `, ` + "`get-content`" + `, ` + "`openable`" + `, ` + "`grant-read-uri-permission`" + `
- Check ` + "`host.intent_class`" + ` in your configuration if the class itself is custom`,
		extLinks: []HttpLink{"https://developer.android.com/reference/android/content/Intent"},
	}

	malformedURIIssue = &Issue{
		id: MalformedURIId,
		mdMsg: `
# Malformed target URI!

The target must be an absolute URI with a scheme, such as
` + "`content://media/external/images/1`" + ` or ` + "`https://example.com`" + `.
Nothing was allocated on the host.

## Things you can try:
- Quote the URI in your shell so that ` + "`?`" + ` and ` + "`&`" + ` survive
- Percent-encode reserved characters in path segments`,
	}

	allocationFailedIssue = &Issue{
		id: AllocationFailedId,
		mdMsg: `
# The host could not allocate an object!

Constructing an intent, a string or a chooser failed on the host side.

## Things you can try:
- Check that ` + "`host.intent_class`" + ` names a constructible class
- Look for a pending host exception in the verbose error chain`,
	}

	mutationFailedIssue = &Issue{
		id: MutationFailedId,
		mdMsg: `
# The host rejected a change to the intent!

Setting an extra, the MIME type, flags or a category failed.

## Things you can try:
- Check the verbose error chain for the rejected method
- Make sure the intent class matches the method descriptors intentkit uses`,
	}

	dispatchFailedIssue = &Issue{
		id: DispatchFailedId,
		mdMsg: `
# The intent could not be launched!

Either an earlier step of the chain failed, or the root activity rejected the
intent. The intent is consumed either way and cannot be launched again.

## Things you can try:
- Read the wrapped error: it is the first failure of the chain
- Build a new intent and launch it again`,
	}

	retrievalFailedIssue = &Issue{
		id: RetrievalFailedId,
		mdMsg: `
# Could not read the completion record!

Polling the activity for results failed, or the record did not have the expected
` + "`requestCode`" + `, ` + "`resultCode`" + ` and ` + "`data`" + ` fields.

## Things you can try:
- Check ` + "`host.result_class`" + ` in your configuration
- Make sure the activity exposes ` + "`getNextIntentResult()`",
	}

	invalidClassesIssue = &Issue{
		id: InvalidClassesId,
		mdMsg: `
# Invalid host class names!

Class names must be non-empty and slash-separated.

## Example:
~~~cue
host: {
	intent_class: "android/content/Intent"
	uri_class:    "android/net/Uri"
	result_class: "com/invowk/intentkit/NativeIntentResult"
}
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ intentkit config show
~~~
- Print where the file is looked up:
~~~
$ intentkit config path
~~~
- Recreate a default file:
~~~
$ intentkit config init
~~~`,
	}

	invalidFlagValueIssue = &Issue{
		id: InvalidFlagValueId,
		mdMsg: `
# Invalid command-line value!

A flag value could not be parsed.

## Things you can try:
- Extras are given as ` + "`--extra key=value`" + `
- Durations use Go syntax, such as ` + "`250ms`" + ` or ` + "`5s`" + `
- Run the command with ` + "`--help`" + ` for the accepted values`,
	}

	issues = map[Id]*Issue{
		hostContextMissingIssue.Id(): hostContextMissingIssue,
		attachFailedIssue.Id():       attachFailedIssue,
		unknownSymbolIssue.Id():      unknownSymbolIssue,
		malformedURIIssue.Id():       malformedURIIssue,
		allocationFailedIssue.Id():   allocationFailedIssue,
		mutationFailedIssue.Id():     mutationFailedIssue,
		dispatchFailedIssue.Id():     dispatchFailedIssue,
		retrievalFailedIssue.Id():    retrievalFailedIssue,
		invalidClassesIssue.Id():     invalidClassesIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		invalidFlagValueIssue.Id():   invalidFlagValueIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, id := range sortedIds() {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

func sortedIds() []Id {
	ids := make([]Id, 0, len(issues))
	for id := range issues {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
