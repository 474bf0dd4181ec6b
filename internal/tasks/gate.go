package tasks

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/lsx/internal/models"
)

// Confirmer decides whether one proposed action is applied.
//
// Confirm always resolves to a boolean for that action; it never aborts the run.
type Confirmer interface {
	Confirm(action models.ProposedAction) bool
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(models.ProposedAction) bool

func (f ConfirmFunc) Confirm(action models.ProposedAction) bool { return f(action) }

// AlwaysApprove is the non-interactive policy used by --yes.
var AlwaysApprove Confirmer = ConfirmFunc(func(models.ProposedAction) bool { return true })

// DenyAll declines everything. Used by --dry-run to print the plan without writing.
var DenyAll Confirmer = ConfirmFunc(func(models.ProposedAction) bool { return false })

// Affirmative is the only input that approves an action. It is case sensitive.
const Affirmative = "y"

// PromptConfirmer asks on out and reads one line from in per action.
//
// Only the exact line "y" approves. Empty input, "Y", "n", anything else, and EOF decline.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptConfirmer creates a console gate.
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *PromptConfirmer) Confirm(action models.ProposedAction) bool {
	verb := "Update"
	if action.Kind == models.CreateRemoteEntry {
		verb = "Add"
	}

	target := "not on list"
	if action.TargetProgress != nil {
		target = fmt.Sprintf("%d", *action.TargetProgress)
	}

	fmt.Fprintf(p.out, "\n%s\n", action.Title)
	fmt.Fprintf(p.out, "  %s: %d on %s, %s on %s\n", action.MediaKind.ProgressNoun(), action.ReferenceProgress,
		referenceName(action.Target), target, action.Target.Display())
	fmt.Fprintf(p.out, "  status: %s\n", action.Status.Label())
	fmt.Fprintf(p.out, "%s %s? [y/N] ", verb, action.Target.Display())

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	return strings.TrimRight(line, "\r\n") == Affirmative
}

// referenceName is the other service of a two-service pair.
func referenceName(target models.ServiceName) string {
	if target == models.MyAnimeList {
		return models.AniList.Display()
	}
	return models.MyAnimeList.Display()
}
