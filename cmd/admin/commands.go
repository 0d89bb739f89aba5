package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cliffordobure/daycare-sub000/internal/service"
)

var errPasswordMismatch = errors.New("两次输入的密码不一致")

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "托育平台运维命令",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.ensure()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "配置文件路径")
	root.SetOut(a.out)

	root.AddCommand(newMigrateCmd(a), newCreateSuperAdminCmd(a), newResetPasswordCmd(a))
	return root
}

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "数据库迁移",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "执行全部未应用的迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.migrate.Up(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "迁移完成")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "回滚迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps 必须大于 0")
			}
			if err := a.migrate.Down(steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已回滚 %d 步\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "回滚步数")

	cmd.AddCommand(up, down)
	return cmd
}

func newCreateSuperAdminCmd(a *app) *cobra.Command {
	var in service.SuperAdminInput
	cmd := &cobra.Command{
		Use:   "create-superadmin",
		Short: "创建超级管理员（密码交互输入）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pwd, err := a.promptPassword(cmd)
			if err != nil {
				return err
			}
			in.Password = pwd

			user, err := a.operator.CreateSuperAdmin(context.Background(), &in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已创建超级管理员 %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "邮箱")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "名")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "姓")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	return cmd
}

func newResetPasswordCmd(a *app) *cobra.Command {
	var email, centerCode string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "重置用户密码，已签发的 Token 随之失效",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pwd, err := a.promptPassword(cmd)
			if err != nil {
				return err
			}
			if err := a.operator.ResetPassword(context.Background(), email, centerCode, pwd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已重置 %s 的密码\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "邮箱")
	cmd.Flags().StringVar(&centerCode, "center-code", "", "中心代码（同一邮箱存在于多个中心时必填）")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// promptPassword 从终端读取两次密码
func (a *app) promptPassword(cmd *cobra.Command) (string, error) {
	out := cmd.OutOrStdout()
	fd := int(os.Stdin.Fd())

	fmt.Fprint(out, "Enter password: ")
	pwd, err := a.readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}

	fmt.Fprint(out, "Confirm password: ")
	confirm, err := a.readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}

	if string(pwd) != string(confirm) {
		return "", errPasswordMismatch
	}
	return string(pwd), nil
}
