package termination

import (
	"perfhub/internal/domain/auth"
)

// Gate guards the irreversible termination workflow. Checks run in a fixed
// order: role, dry run, signoffs, risk-flag hold. The kill switch is not a
// gate check; it is handled by the sweep as a successful no-op.
type Gate struct {
	DryRun bool
}

// blockedFlags force a hold even when both signoffs are present.
var blockedFlags = map[string]bool{
	FlagProtectedClass: true,
	FlagOngoingLeave:   true,
	FlagWhistleblower:  true,
}

// Check returns nil only when every precondition for running termination
// logic holds. The RBAC middleware enforces the role earlier; the gate does
// not assume that and restates it as its own first check.
func (g Gate) Check(principal auth.Principal, req Request) error {
	if !auth.CanTerminate(principal.Role) {
		return &PolicyError{
			Code:    CodeForbiddenRole,
			Message: "role is not authorized to run terminations",
			Details: map[string]any{"role": principal.Role},
		}
	}

	// dry run is checked before signoffs, so a blocked rollout rejects
	// even perfectly-attested requests
	if g.DryRun {
		return &PolicyError{
			Code:    CodeDryRunEnabled,
			Message: "dry run enabled, terminations are blocked",
		}
	}

	if !req.LegalSignoff || !req.HRSignoff {
		missing := []string{}
		if !req.LegalSignoff {
			missing = append(missing, "legalSignoff")
		}
		if !req.HRSignoff {
			missing = append(missing, "hrSignoff")
		}
		return &PolicyError{
			Code:    CodeMissingSignoff,
			Message: "missing signoff",
			Details: map[string]any{"missing": missing},
		}
	}

	var held []string
	for _, flag := range req.RiskFlags {
		if blockedFlags[flag] {
			held = append(held, flag)
		}
	}
	if len(held) > 0 {
		return &PolicyError{
			Code:    CodeRiskHold,
			Message: "risk requires hold",
			Details: map[string]any{"flags": held},
		}
	}

	return nil
}
