package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"org-admin/backend/pkg/jwt"
)

// newTokenCmd 签发运维用 Access Token，登录不在本服务职责内
func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		userID   uint64
		username string
		deptID   uint64
		perms    []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发 Access Token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == 0 {
				return fmt.Errorf("--user 必须指定")
			}

			cfg, logger, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(jwt.Subject{
				UserID:      userID,
				Username:    username,
				DeptID:      deptID,
				Permissions: perms,
			})
			if err != nil {
				return fmt.Errorf("签发 Token 失败: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&userID, "user", 0, "用户 ID")
	cmd.Flags().StringVar(&username, "username", "", "用户名")
	cmd.Flags().Uint64Var(&deptID, "dept", 0, "所属部门 ID")
	cmd.Flags().StringSliceVar(&perms, "perm", []string{jwt.AllPermission}, "权限标识，可重复")
	return cmd
}
