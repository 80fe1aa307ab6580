package main

import (
	"context"
	"fmt"
)

// createSuperAdmin seeds the first user of a deployment.
func (cli *commandLine) createSuperAdmin(name, email, pwd string) error {
	usr, created, err := cli.users.CreateSuperAdmin(context.Background(), name, email, pwd)
	if err != nil {
		return err
	}
	if !created {
		fmt.Printf("User %s already exists (role %s).\n", usr.Email, usr.Role)
		return nil
	}
	fmt.Printf("Super admin %s created.\n", usr.Email)
	return nil
}
