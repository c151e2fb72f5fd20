package store

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Each sandbox gets a uniquely named shared-cache memory database so two
// managers in one process never see each other's throwaway data. Closing
// the last connection drops the database.
var sandboxSeq int64

// EnterSandbox clones the durable store's schema into a fresh in-memory
// database, seeds it with fixture rows and flips the active mode. The
// returned bool is false when sandbox mode was already active (a benign
// no-op, not an error). On any failure the partially built sandbox is
// discarded and the mode stays at production.
func (m *Manager) EnterSandbox() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == Sandbox {
		m.logger.Info("sandbox mode already active")
		return false, nil
	}

	dsn := fmt.Sprintf("file:sandbox%d?mode=memory&cache=shared", atomic.AddInt64(&sandboxSeq, 1))
	sb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return false, fmt.Errorf("open sandbox store: %w", err)
	}

	if err := m.cloneSchemaInto(sb); err != nil {
		closeDB(sb)
		return false, fmt.Errorf("clone schema into sandbox: %w", err)
	}

	if err := seedFixtures(sb, m.bcryptCost); err != nil {
		closeDB(sb)
		return false, fmt.Errorf("seed sandbox fixtures: %w", err)
	}

	m.sandbox = sb
	m.mode = Sandbox
	m.logger.Info("sandbox mode activated", "dsn", dsn)
	return true, nil
}

// ExitSandbox discards the in-memory store entirely and flips back to
// production. Sandbox edits are never merged back. The returned bool is
// false when production was already active.
func (m *Manager) ExitSandbox() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == Production {
		m.logger.Info("sandbox mode already inactive")
		return false, nil
	}

	closeDB(m.sandbox)
	m.sandbox = nil
	m.mode = Production
	m.logger.Info("sandbox mode deactivated, all sandbox data discarded")
	return true, nil
}

// cloneSchemaInto copies every user table's structural definition (not
// data) from the durable catalog into the sandbox, all or nothing.
func (m *Manager) cloneSchemaInto(sb *gorm.DB) error {
	tables, err := listTables(m.durable)
	if err != nil {
		return err
	}

	return sb.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			ddl, err := tableDefinitionSQL(m.durable, table)
			if err != nil {
				return err
			}
			m.logger.Debug("copying table structure", "table", table)
			if err := tx.Exec(ddl).Error; err != nil {
				return fmt.Errorf("create table %s: %w", table, err)
			}
		}
		return nil
	})
}

// seedFixtures populates the sandbox with a small, predictable data set:
// the three roles, the permission vocabulary, one user per role (all with
// password "test123"), a dealership, a handful of vehicles and one sale.
func seedFixtures(sb *gorm.DB, bcryptCost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("test123"), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash fixture password: %w", err)
	}

	return sb.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []struct {
			query string
			args  []interface{}
		}{
			{`INSERT INTO roles (role_id, role_name) VALUES (1, 'Admin')`, nil},
			{`INSERT INTO roles (role_id, role_name) VALUES (2, 'Manager')`, nil},
			{`INSERT INTO roles (role_id, role_name) VALUES (3, 'Salesperson')`, nil},

			{`INSERT INTO permissions (permission_name) VALUES
				('ADD_VEHICLE'), ('EDIT_VEHICLE'), ('MANAGE_USERS'), ('REMOVE_VEHICLE'),
				('RESET_PASSWORDS'), ('SEARCH_VEHICLES'), ('SELL_VEHICLE'),
				('VIEW_DEALERSHIP_INFO'), ('VIEW_SALES_HISTORY')`, nil},

			{`INSERT INTO users (username, password, role_id, name, email, phone, is_active, is_temp_password, failed_attempts)
				VALUES ('testadmin', ?, 1, 'Test Admin', 'testadmin@example.com', '555-000-0000', 1, 0, 0)`,
				[]interface{}{string(hash)}},
			{`INSERT INTO users (username, password, role_id, name, email, phone, is_active, is_temp_password, failed_attempts)
				VALUES ('testmanager', ?, 2, 'Test Manager', 'testmanager@example.com', '555-000-0001', 1, 0, 0)`,
				[]interface{}{string(hash)}},
			{`INSERT INTO users (username, password, role_id, name, email, phone, is_active, is_temp_password, failed_attempts)
				VALUES ('testsales', ?, 3, 'Test Salesperson', 'testsales@example.com', '555-000-0002', 1, 0, 0)`,
				[]interface{}{string(hash)}},

			{`INSERT INTO dealerships (name, location, capacity) VALUES ('Test Dealership', 'Test Location', 50)`, nil},

			{`INSERT INTO vehicles (make, model, color, year, price, car_type, dealerships_id)
				VALUES ('Honda', 'Civic', 'Red', 2022, 25000, 'Sedan', 1)`, nil},
			{`INSERT INTO vehicles (make, model, color, year, price, car_type, dealerships_id)
				VALUES ('Toyota', 'Camry', 'Blue', 2021, 30000, 'Sedan', 1)`, nil},
			{`INSERT INTO vehicles (make, model, color, year, price, car_type, dealerships_id)
				VALUES ('Ford', 'F-150', 'Black', 2023, 45000, 'Truck', 1)`, nil},
			{`INSERT INTO vehicles (make, model, color, year, price, handlebar_type, dealerships_id)
				VALUES ('Harley-Davidson', 'Street 750', 'Black', 2022, 8000, 'Cruiser', 1)`, nil},
			{`INSERT INTO vehicles (make, model, color, year, price, handlebar_type, dealerships_id)
				VALUES ('Yamaha', 'YZF R1', 'Blue', 2023, 12000, 'Sport', 1)`, nil},

			{`INSERT INTO sales (vehicle_id, user_id, buyer_name, buyer_contact, sale_date)
				VALUES (2, 3, 'John Doe', 'john@example.com', '2023-01-15 14:30:00')`, nil},
		} {
			if err := tx.Exec(stmt.query, stmt.args...).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
