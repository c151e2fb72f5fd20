package sqlite_test

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/motorlot/dealerd/internal/store"
	"github.com/motorlot/dealerd/internal/user"
	usersqlite "github.com/motorlot/dealerd/internal/user/sqlite"
)

func TestUserSQLite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User SQLite Suite")
}

var dsnSeq int64

var _ = Describe("User SQLite Repository", func() {
	var (
		setupDB *gorm.DB
		mgr     *store.Manager
		repo    *usersqlite.Repository
	)

	BeforeEach(func() {
		dsn := fmt.Sprintf("file:user_repo_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dsnSeq, 1))
		var err error
		setupDB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		for _, ddl := range []string{
			`CREATE TABLE roles (role_id INTEGER PRIMARY KEY AUTOINCREMENT, role_name TEXT NOT NULL)`,
			`CREATE TABLE users (
				user_id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT UNIQUE NOT NULL COLLATE NOCASE,
				password TEXT NOT NULL,
				role_id INTEGER,
				name TEXT NOT NULL,
				email TEXT,
				phone TEXT,
				is_active BOOLEAN DEFAULT TRUE,
				is_temp_password BOOLEAN DEFAULT FALSE,
				failed_attempts INTEGER DEFAULT 0,
				join_date DATE DEFAULT CURRENT_DATE
			)`,
			`CREATE TABLE password_reset_requests (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL,
				request_date TEXT NOT NULL
			)`,
			`CREATE TABLE vehicles (
				vehicle_id INTEGER PRIMARY KEY AUTOINCREMENT,
				make TEXT NOT NULL, model TEXT NOT NULL, color TEXT, year INTEGER,
				price REAL NOT NULL, car_type TEXT, dealerships_id INTEGER
			)`,
			`CREATE TABLE sales (
				sale_id INTEGER PRIMARY KEY AUTOINCREMENT,
				vehicle_id INTEGER NOT NULL,
				user_id INTEGER NOT NULL,
				buyer_name TEXT, buyer_contact TEXT,
				sale_date DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		} {
			Expect(setupDB.Exec(ddl).Error).NotTo(HaveOccurred())
		}

		Expect(setupDB.Exec(`INSERT INTO roles (role_id, role_name) VALUES (1, 'Admin'), (2, 'Manager'), (3, 'Salesperson')`).Error).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		mgr, err = store.Open(dsn, bcrypt.MinCost, logger)
		Expect(err).NotTo(HaveOccurred())

		repo = usersqlite.NewRepository(store.NewHandle(mgr))
	})

	AfterEach(func() {
		Expect(mgr.Close()).To(Succeed())
		if sqlDB, err := setupDB.DB(); err == nil {
			sqlDB.Close()
		}
	})

	Describe("Insert and GetByUsername", func() {
		It("should round-trip a profile with its role name", func() {
			id, err := repo.Insert(&user.User{
				Username: "frank", PasswordHash: "hash", Role: user.RoleManager,
				Name: "Frank Manager", Email: "frank@example.com", Phone: "555-1",
				IsActive: true, IsTempPassword: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(BeNumerically(">", 0))

			got, err := repo.GetByUsername("frank")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(id))
			Expect(got.Role).To(Equal(user.RoleManager))
			Expect(got.RoleName).To(Equal("Manager"))
			Expect(got.IsTempPassword).To(BeTrue())
			Expect(got.FailedAttempts).To(Equal(0))
		})

		It("should match usernames case-insensitively", func() {
			_, err := repo.Insert(&user.User{
				Username: "Grace", PasswordHash: "hash", Role: user.RoleSalesperson,
				Name: "Grace Seller", IsActive: true,
			})
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.GetByUsername("gRaCe")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Username).To(Equal("Grace"))
		})

		It("should report sql.ErrNoRows for an unknown username", func() {
			_, err := repo.GetByUsername("nobody")
			Expect(err).To(MatchError(sql.ErrNoRows))
		})

		It("should refuse a duplicate username differing only in case", func() {
			_, err := repo.Insert(&user.User{
				Username: "henry", PasswordHash: "hash", Role: user.RoleSalesperson,
				Name: "Henry", IsActive: true,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.Insert(&user.User{
				Username: "HENRY", PasswordHash: "hash", Role: user.RoleSalesperson,
				Name: "Henry Again", IsActive: true,
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SetActive", func() {
		It("should clear the lockout counter on reactivation", func() {
			id, err := repo.Insert(&user.User{
				Username: "ivy", PasswordHash: "hash", Role: user.RoleSalesperson,
				Name: "Ivy", IsActive: true,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(setupDB.Exec(`UPDATE users SET is_active = 0, failed_attempts = 3 WHERE user_id = ?`, id).Error).NotTo(HaveOccurred())

			Expect(repo.SetActive(id, true)).To(Succeed())

			got, err := repo.GetByUsername("ivy")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsActive).To(BeTrue())
			Expect(got.FailedAttempts).To(Equal(0))
		})

		It("should leave the counter alone on deactivation", func() {
			id, err := repo.Insert(&user.User{
				Username: "jack", PasswordHash: "hash", Role: user.RoleSalesperson,
				Name: "Jack", IsActive: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(setupDB.Exec(`UPDATE users SET failed_attempts = 2 WHERE user_id = ?`, id).Error).NotTo(HaveOccurred())

			Expect(repo.SetActive(id, false)).To(Succeed())

			got, err := repo.GetByUsername("jack")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsActive).To(BeFalse())
			Expect(got.FailedAttempts).To(Equal(2))
		})
	})

	Describe("ResetRequests", func() {
		It("should list requests in insertion order", func() {
			Expect(setupDB.Exec(`INSERT INTO password_reset_requests (username, request_date) VALUES ('kim', '2026-01-01T10:00:00Z')`).Error).NotTo(HaveOccurred())
			Expect(setupDB.Exec(`INSERT INTO password_reset_requests (username, request_date) VALUES ('lee', '2026-01-02T10:00:00Z')`).Error).NotTo(HaveOccurred())

			requests, err := repo.ResetRequests()
			Expect(err).NotTo(HaveOccurred())
			Expect(requests).To(HaveLen(2))
			Expect(requests[0].Username).To(Equal("kim"))
			Expect(requests[1].Username).To(Equal("lee"))
		})
	})

	Describe("SalesHistory", func() {
		It("should join vehicle and salesperson details", func() {
			sellerID, err := repo.Insert(&user.User{
				Username: "mona", PasswordHash: "hash", Role: user.RoleSalesperson,
				Name: "Mona Seller", IsActive: true,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(setupDB.Exec(`INSERT INTO vehicles (vehicle_id, make, model, price) VALUES (1, 'Honda', 'Civic', 25000)`).Error).NotTo(HaveOccurred())
			Expect(setupDB.Exec(`INSERT INTO sales (vehicle_id, user_id, buyer_name, buyer_contact, sale_date) VALUES (1, ?, 'Buyer', 'buyer@example.com', '2026-02-01 12:00:00')`, sellerID).Error).NotTo(HaveOccurred())

			records, err := repo.SalesHistory()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].Vehicle).To(Equal("Honda Civic"))
			Expect(records[0].Price).To(Equal(25000.0))
			Expect(records[0].Salesperson).To(Equal("Mona Seller"))
		})
	})
})
