package main

import (
	"context"
	"fmt"
	"time"

	"github.com/darasahq/darasa/core"
)

// approve flips the admin approval flag on a student account.
func (cli *commandLine) approve(email string) error {
	ctx := context.Background()

	usr, err := cli.usrRepo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if !usr.IsStudent() {
		return fmt.Errorf("%s is not a student account", usr.Email)
	}
	if usr.AdminApproved {
		return nil
	}
	usr.AdminApproved = true
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
