package emis

import "context"

// Approver confirms operations that write into a live EMIS database.
//
// Implementations:
//   - AutoApprover: approves without prompting (--yes)
//   - InteractiveApprover: prompts the user to type the database name
type Approver interface {
	// RequestApproval asks whether the described write may proceed against target.
	// Returns false without error when the user declines.
	RequestApproval(ctx context.Context, target, action string) (bool, error)
}
