// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

const (
	TaskNotFoundId Id = iota + 1
	TaskfileParseErrorId
	ConfigLoadFailedId
	ProgramNotFoundId
	TaskFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is markdown rendered by glamour.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalog entry: guidance shown for a class of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id { return i.id }

func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

func (i *Issue) ExtLinks() []HttpLink { return slices.Clone(i.extLinks) }

// Render renders the markdown with the given glamour style ("dark", "light",
// "notty", ...).
func (i *Issue) Render(style string) (string, error) {
	md := string(i.mdMsg)
	if len(i.extLinks) > 0 {
		var b strings.Builder
		b.WriteString("\n\n## See also\n")
		for _, l := range i.extLinks {
			b.WriteString("- " + string(l) + "\n")
		}
		md += b.String()
	}
	return render(md, style)
}

var (
	render = glamour.Render

	taskNotFoundIssue = &Issue{
		id: TaskNotFoundId,
		mdMsg: `
# Task not found!

The task you asked for is not a built-in and is not declared in your taskfile.

## Things you can try:
- List the available tasks:
~~~
$ taskdeck task --list
~~~
- Check the spelling; task names are case sensitive
- Declare the task in ` + "`taskdeck.cue`" + `:
~~~cue
tasks: [
  {name: "fmt", command: ["cargo", "fmt"]},
]
~~~`,
	}

	taskfileParseErrorIssue = &Issue{
		id: TaskfileParseErrorId,
		mdMsg: `
# Failed to parse taskdeck.cue!

## Common causes:
- Invalid CUE syntax (missing braces or quotes)
- Unknown fields (the schema is closed)
- A panel ` + "`size`" + ` outside 1-200
- The same task name declared twice

## Things you can try:
- Regenerate a reference file next to yours:
~~~
$ taskdeck init --output taskdeck.example.cue
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Configuration file locations:
- Linux: ~/.config/taskdeck/config.cue
- macOS: ~/Library/Application Support/taskdeck/config.cue
- Windows: %APPDATA%\taskdeck\config.cue

## Things you can try:
- Print the effective configuration:
~~~
$ taskdeck config show
~~~
- Remove the file to fall back to defaults`,
	}

	programNotFoundIssue = &Issue{
		id: ProgramNotFoundId,
		mdMsg: `
# Program not found!

The task's program is not on your PATH.

## Things you can try:
- Install the Rust toolchain if the task runs ` + "`cargo`" + `:
~~~
$ curl --proto '=https' --tlsv1.2 -sSf https://sh.rustup.rs | sh
~~~
- Add the wasm target for wasm tasks:
~~~
$ rustup target add wasm32-unknown-unknown
~~~
- Point the task at another program in ` + "`taskdeck.cue`",
		extLinks: []HttpLink{"https://rustup.rs/"},
	}

	taskFailedIssue = &Issue{
		id: TaskFailedId,
		mdMsg: `
# Task failed!

The program exited with a non-zero status. Its own output above explains why.

## Things you can try:
- Re-run with verbose logging:
~~~
$ taskdeck -v task <name>
~~~
- Show exactly what is executed:
~~~
$ taskdeck task <name> --dry-run
~~~`,
	}

	issues = map[Id]*Issue{
		taskNotFoundIssue.id:       taskNotFoundIssue,
		taskfileParseErrorIssue.id: taskfileParseErrorIssue,
		configLoadFailedIssue.id:   configLoadFailedIssue,
		programNotFoundIssue.id:    programNotFoundIssue,
		taskFailedIssue.id:         taskFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := maps.Values(issues)
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
