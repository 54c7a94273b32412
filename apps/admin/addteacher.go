package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/aulalink/backend/core"
	"github.com/aulalink/backend/core/account"
)

// addTeacher creates a teacher account and prints the generated teacher code.
func (cli *commandLine) addTeacher(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	if err := cli.accountRepo.CheckEmailUniqueness(ctx, email); err != nil {
		return err
	}

	now := time.Now().UTC()
	prof := account.Profile{
		Email:     email,
		FullName:  name,
		Role:      account.RoleTeacher,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := prof.SetPassword(pwd); err != nil {
		return err
	}
	prof, err := cli.accountRepo.CreateProfile(ctx, prof)
	if err != nil {
		return err
	}

	var tchr account.Teacher
	for attempt := 0; ; attempt++ {
		code, err := account.GenerateTeacherCode()
		if err != nil {
			return err
		}
		tchr, err = cli.accountRepo.CreateTeacher(ctx, account.Teacher{
			ID:          prof.ID,
			TeacherCode: code,
			CreatedAt:   now,
		})
		if err == nil {
			break
		}
		if errors.Cause(err) != account.ErrTeacherCodeExists || attempt >= 2 {
			return err
		}
	}

	fmt.Printf("Teacher %q created. Teacher code: %s\n", prof.Email, tchr.TeacherCode)
	return nil
}
