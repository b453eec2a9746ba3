package browser

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

const challengePrompt = "Please solve the CAPTCHA manually."

// AwaitOperator asks the operator to clear the challenge in the visible
// browser and blocks until a line arrives on in. There is no timeout; only
// ctx cancellation or a closed input ends the wait early.
func AwaitOperator(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, challengePrompt)
	fmt.Fprint(out, "Press Enter once the page has loaded... ")

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(in).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to read operator input: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
