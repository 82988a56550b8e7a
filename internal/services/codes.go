package services

import (
	"context"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/utils"
)

const maxCodeAttempts = 10

// uniqueCode draws codes from gen until exists reports a free one.
func uniqueCode(ctx context.Context, gen utils.CodeGenerator, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := gen()
		if err != nil {
			return "", apperr.Internal(err, "failed to generate code")
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperr.Internal(nil, "could not find a free code")
}
