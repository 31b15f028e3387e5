package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

// AutoApprover approves without prompting. Used with --yes and in
// non-interactive sessions.
type AutoApprover struct {
	output io.Writer
}

// NewAutoApprover reports each approval on stderr.
func NewAutoApprover() emis.Approver {
	return &AutoApprover{output: os.Stderr}
}

// RequestApproval approves unless ctx is already done.
func (a *AutoApprover) RequestApproval(ctx context.Context, target, action string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(a.output, "✓ Proceeding to %s on '%s' (--yes)\n", action, target)
	return true, nil
}

var _ emis.Approver = (*AutoApprover)(nil)
