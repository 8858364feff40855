package healthchecker

import (
	"context"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/completion"
)

// CheckCompletion lists the available models, which needs a working credential
// but costs no tokens.
func CheckCompletion(ctx context.Context) error {
	client := completion.NewClient()

	_, err := client.Client.Models.List(ctx)

	return err
}
