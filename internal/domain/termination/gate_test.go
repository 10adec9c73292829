package termination

import (
	"errors"
	"testing"

	"perfhub/internal/domain/auth"
)

func validRequest() Request {
	return Request{LegalSignoff: true, HRSignoff: true}
}

func hrPrincipal() auth.Principal {
	return auth.Principal{ID: "u1", Role: auth.RoleHR}
}

func policyCode(t *testing.T, err error) string {
	t.Helper()
	var perr *PolicyError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PolicyError, got %v", err)
	}
	return perr.Code
}

func TestGateAllowsValidRequest(t *testing.T) {
	gate := Gate{DryRun: false}
	if err := gate.Check(hrPrincipal(), validRequest()); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	manager := auth.Principal{ID: "u2", Role: auth.RoleManager}
	if err := gate.Check(manager, validRequest()); err != nil {
		t.Fatalf("manager must be allowed: %v", err)
	}
}

func TestGateRejectsUnauthorizedRole(t *testing.T) {
	gate := Gate{}
	err := gate.Check(auth.Principal{ID: "u3", Role: auth.RoleEmployee}, validRequest())
	if policyCode(t, err) != CodeForbiddenRole {
		t.Fatalf("expected forbidden role, got %v", err)
	}
	var perr *PolicyError
	errors.As(err, &perr)
	if !perr.Forbidden() {
		t.Fatal("role rejection must map to forbidden")
	}
}

func TestGateDryRunBeatsValidSignoffs(t *testing.T) {
	gate := Gate{DryRun: true}
	err := gate.Check(hrPrincipal(), validRequest())
	if policyCode(t, err) != CodeDryRunEnabled {
		t.Fatalf("dry run must be checked independently of signoffs, got %v", err)
	}
}

func TestGateMissingSignoff(t *testing.T) {
	gate := Gate{}

	err := gate.Check(hrPrincipal(), Request{LegalSignoff: true})
	if policyCode(t, err) != CodeMissingSignoff {
		t.Fatalf("expected missing signoff, got %v", err)
	}
	var perr *PolicyError
	errors.As(err, &perr)
	missing, ok := perr.Details["missing"].([]string)
	if !ok || len(missing) != 1 || missing[0] != "hrSignoff" {
		t.Fatalf("expected hrSignoff named as missing, got %+v", perr.Details)
	}

	err = gate.Check(hrPrincipal(), Request{})
	errors.As(err, &perr)
	if missing := perr.Details["missing"].([]string); len(missing) != 2 {
		t.Fatalf("expected both signoffs missing, got %v", missing)
	}
}

func TestGateRiskHoldBeatsSignoffs(t *testing.T) {
	gate := Gate{}
	req := validRequest()
	req.RiskFlags = []string{"relocation", FlagProtectedClass}

	err := gate.Check(hrPrincipal(), req)
	if policyCode(t, err) != CodeRiskHold {
		t.Fatalf("expected risk hold, got %v", err)
	}
	var perr *PolicyError
	errors.As(err, &perr)
	flags, ok := perr.Details["flags"].([]string)
	if !ok || len(flags) != 1 || flags[0] != FlagProtectedClass {
		t.Fatalf("offending flags must be surfaced, got %+v", perr.Details)
	}
}

func TestGateIgnoresUnblockedFlags(t *testing.T) {
	gate := Gate{}
	req := validRequest()
	req.RiskFlags = []string{"relocation", "tenure_over_10y"}
	if err := gate.Check(hrPrincipal(), req); err != nil {
		t.Fatalf("non-blocked flags must pass: %v", err)
	}
}
