package txvalidator

import (
	"context"
	"regexp"

	"skillmesh/internal/usecase/commands"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// LocalValidator is the stand-in for the chain-side transaction validator.
// It only checks the hash shape; a deployment wired to a real node would
// replace this with an RPC lookup behind the same interface.
type LocalValidator struct{}

func New() *LocalValidator {
	return &LocalValidator{}
}

func (v *LocalValidator) Validate(_ context.Context, txHash, _ string) (commands.TxValidation, error) {
	if !txHashPattern.MatchString(txHash) {
		return commands.TxValidation{
			Valid:  false,
			Reason: "malformed transaction hash",
		}, nil
	}
	return commands.TxValidation{Valid: true}, nil
}
