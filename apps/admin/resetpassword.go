package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	if err := cli.users.ResetPassword(context.Background(), email, pwd); err != nil {
		return err
	}
	fmt.Printf("Password of %s updated.\n", email)
	return nil
}
