package main

import (
	"context"

	"github.com/aulalink/backend/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	prof, err := cli.accountRepo.GetProfileByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := prof.SetPassword(pwd); err != nil {
		return err
	}
	if err := cli.accountRepo.SetPassword(ctx, prof.ID, prof.PasswordHash); err != nil {
		return err
	}

	if cli.mailSvc != nil {
		cli.mailSvc.SendMessages(prof.PasswordResetMessage())
	}
	return nil
}
