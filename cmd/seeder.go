package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/motorlot/dealerd/internal/permission"
	"github.com/motorlot/dealerd/internal/user"
)

var (
	seedUsername string
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a bootstrap administrator",
	Long:  `Create the first administrator account and grant it the full permission set. Run migrations first.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}

		password := seedPassword
		if password == "" {
			password = fmt.Sprintf("admin-%s", strings.Split(uuid.NewString(), "-")[0])
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		var exists int
		row := db.Raw(`SELECT 1 FROM users WHERE LOWER(username) = LOWER(?)`, seedUsername).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Printf("user %s already exists; will ensure permissions\n", seedUsername)
		} else {
			err := db.Exec(`INSERT INTO users (username, password, role_id, name, email, phone, is_active, is_temp_password, failed_attempts)
				VALUES (?, ?, ?, 'Bootstrap Admin', 'admin@example.com', '', 1, 0, 0)`,
				seedUsername, string(hash), int64(user.RoleAdmin)).Error
			if err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Printf("Seeded admin user %q with password %q\n", seedUsername, password)
		}

		var adminID int64
		if err := db.Raw(`SELECT user_id FROM users WHERE LOWER(username) = LOWER(?)`, seedUsername).Row().Scan(&adminID); err != nil {
			log.Fatalf("failed to look up admin user id: %v", err)
		}

		for _, name := range permission.Vocabulary() {
			var pid int64
			if err := db.Raw(`SELECT permission_id FROM permissions WHERE permission_name = ?`, name).Row().Scan(&pid); err != nil {
				log.Fatalf("permission %s missing; run migrations first: %v", name, err)
			}

			var granted int
			if err := db.Raw(`SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?`, adminID, pid).Row().Scan(&granted); err == nil {
				continue
			}

			err := db.Exec(`INSERT INTO user_permissions (user_id, permission_id, is_enabled) VALUES (?, ?, 1)`, adminID, pid).Error
			if err != nil {
				log.Fatalf("failed to grant permission %s: %v", name, err)
			}
		}

		fmt.Printf("Granted all permissions to %q\n", seedUsername)
	},
}
