package cli

import (
	"context"
	"errors"
	"log"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/remote"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/repositories/kv"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
)

func (a *App) Login(ctx context.Context) {

	if a.isLoggedIn() {
		log.Printf("Already logged in")
		return
	}

	email, err := GetSimpleText(a.reader, "-Enter email")
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	password, err := GetPassword()
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	defer common.WipeByteArray(password)

	res, err := a.remote.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, remote.ErrUnavailable) {
			log.Printf("Server unavailable, try again later")
		} else if errors.Is(err, remote.ErrUnauthorized) {
			log.Printf("Wrong email or password")
		} else {
			log.Printf("Login unsuccessfull: %s", err.Error())
		}
		return
	}

	if _, err := a.guard.Activate(ctx, res.User.ID, res.User.Email); err != nil {
		log.Printf("error saving session: %v", err)
		return
	}

	a.stopGuard = a.guard.Start(ctx)
	a.startFeed(ctx, res.AccessToken)

	log.Printf("Login successfull")

	if tab, err := a.store.KV.Get(ctx, kv.KeyLastActiveTab); err == nil && tab != "" {
		log.Printf("Restored view: %s", tab)
	}
}

func (a *App) Logout(ctx context.Context) {

	if !a.isLoggedIn() {
		log.Printf("Not logged in")
		return
	}

	a.detach()
	a.guard.Logout(ctx)
	log.Printf("Logged out")
}
