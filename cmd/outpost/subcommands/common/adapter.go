package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/youta-t/flarc"

	"github.com/outpost-run/outpost/cmd/outpost/config/profiles"
	"github.com/outpost-run/outpost/pkg/api"
)

type TaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTaskWithCommonFlag[T any](task TaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))

		return task(
			ctx,
			logger,
			commonFlag,
			cl,
			newpos,
		)
	}
}

type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	profile *profiles.Profile,
	client api.Client,
	cl flarc.Commandline[T],
	params []any,
) error

// NewTask wraps a task needing a backend connection: it loads the selected
// profile, builds an api.Client out of it and hands both to the task.
func NewTask[T any](task Task[T]) flarc.Task[T] {

	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		store, err := profiles.Load(commonFlag.ProfileStore)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) || errors.Is(err, profiles.ErrProfileStoreNotFound) {
				return fmt.Errorf(
					"%w: profile store (%s) is not found. Please try `outpost init` first. Ask your admin to get a profile",
					err, commonFlag.ProfileStore,
				)
			}
			return fmt.Errorf(
				"%w: failed to load the profile store (%s)",
				err, commonFlag.ProfileStore,
			)
		}
		prof, ok := store[commonFlag.Profile]
		if !ok {
			return fmt.Errorf(
				"profile '%s' not found in the profile store (%s)",
				commonFlag.Profile, commonFlag.ProfileStore,
			)
		}

		if at, ok := prof.TokenExpiresAt(); ok && at.Before(time.Now()) {
			logger.Printf(
				"your token for profile '%s' expired at %s; requests may be rejected",
				commonFlag.Profile, at,
			)
		}

		client, err := newClient(prof)
		if err != nil {
			return fmt.Errorf(
				"%w: failed to create a client. Your profile (%s in %s) can be broken.\n\nRemove it and try `outpost init` again. Ask your admin to get a profile",
				err, commonFlag.Profile, commonFlag.ProfileStore,
			)
		}
		return task(ctx, logger, prof, client, cl, params)
	})
}

func newClient(prof *profiles.Profile) (api.Client, error) {
	options := []api.Option{}
	if prof.Cert.CA != "" {
		options = append(options, api.WithCA(prof.Cert.CA))
	}
	if prof.Token != "" {
		options = append(options, api.WithToken(prof.Token))
	}
	return api.NewClient(prof.ApiRoot, options...)
}
