package command

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"points/internal/selector"
)

// Complete suggests candidates for the last of args, the way a chat client
// tab-completes "/points ...".
func (d *Dispatcher) Complete(ctx context.Context, args []string) []string {
	if len(args) <= 1 {
		typed := ""
		if len(args) == 1 {
			typed = args[0]
		}
		return withPrefix(Verbs, typed)
	}

	switch args[0] {
	case "add", "sub":
		if len(args) == 2 {
			return digits(args[1])
		}
		return d.completeSelector(ctx, args[2:])
	case "test":
		return d.completeSelector(ctx, args[1:])
	case "broadcast":
		if len(args) == 2 {
			return withPrefix([]string{"true", "false"}, args[1])
		}
	}
	return []string{}
}

func (d *Dispatcher) completeSelector(ctx context.Context, tokens []string) []string {
	r, err := d.Roster(ctx)
	if err != nil {
		d.logger.Warn("loading roster for completion", zap.Error(err))
		return []string{}
	}
	return selector.Complete(tokens, r.Context())
}

// digits extends a partly typed amount by one digit. A leading zero is
// never offered.
func digits(typed string) []string {
	out := make([]string, 0, 10)
	for i := 0; i <= 9; i++ {
		if typed == "" && i == 0 {
			continue
		}
		out = append(out, typed+strconv.Itoa(i))
	}
	return out
}

func withPrefix(candidates []string, typed string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if strings.HasPrefix(c, strings.ToLower(typed)) {
			out = append(out, c)
		}
	}
	return out
}
