package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo department, admin user and sensor for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"eventos_acceso", "sensores", "password_reset_codes", "users", "departamentos"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		deptID := seedDepartment(db)
		userID := seedAdminUser(db, deptID)
		seedSensor(db, deptID, userID)
	},
}

func seedDepartment(db *gorm.DB) int64 {
	var id int64
	row := db.Raw("SELECT id_departamento FROM departamentos WHERE numero = ? AND torre = ?", "101", "A").Row()
	if err := row.Scan(&id); err == nil {
		fmt.Println("demo department already exists")
		return id
	}

	if err := db.Exec("INSERT INTO departamentos (numero, torre, otros_datos, created_at) VALUES (?, ?, ?, now())",
		"101", "A", "Condominio Demo").Error; err != nil {
		log.Fatalf("failed to insert department: %v", err)
	}
	if err := db.Raw("SELECT id_departamento FROM departamentos WHERE numero = ? AND torre = ?", "101", "A").Row().Scan(&id); err != nil {
		log.Fatalf("failed to read back department: %v", err)
	}
	fmt.Println("Seeded demo department 101/A")
	return id
}

func seedAdminUser(db *gorm.DB, deptID int64) int64 {
	adminEmail := "demo@example.com"

	var id int64
	row := db.Raw("SELECT id FROM users WHERE email = ?", adminEmail).Row()
	if err := row.Scan(&id); err == nil {
		fmt.Println("admin user already exists")
		return id
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("Demo1234!"), bcrypt.DefaultCost)
	if err := db.Exec(`INSERT INTO users (name, last_name, email, password_hash, id_departamento, estado, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'ACTIVO', 'ADMIN', now(), now())`,
		"Demo", "Admin", adminEmail, string(hash), deptID).Error; err != nil {
		log.Fatalf("failed to insert admin user: %v", err)
	}
	if err := db.Raw("SELECT id FROM users WHERE email = ?", adminEmail).Row().Scan(&id); err != nil {
		log.Fatalf("failed to read back admin user: %v", err)
	}
	fmt.Println("Seeded admin user:", adminEmail)
	return id
}

func seedSensor(db *gorm.DB, deptID, userID int64) {
	code := "RFID-0001"

	var id int64
	row := db.Raw("SELECT id_sensor FROM sensores WHERE codigo_sensor = ?", code).Row()
	if err := row.Scan(&id); err == nil {
		fmt.Println("demo sensor already exists")
		return
	}

	if err := db.Exec(`INSERT INTO sensores (codigo_sensor, tipo, estado, id_departamento, id_usuario, fecha_alta)
		VALUES (?, ?, 'ACTIVO', ?, ?, now())`,
		code, "Llavero", deptID, userID).Error; err != nil {
		log.Fatalf("failed to insert sensor: %v", err)
	}
	fmt.Println("Seeded demo sensor:", code)
}
