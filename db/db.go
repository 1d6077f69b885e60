package db

import (
	"cinara/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Invite{},
		&models.Workspace{},
		&models.TeacherStudent{},
		&models.WorkspaceMember{},
		&models.ClassSession{},
	); err != nil {
		return err
	}

	// 一个学生对同一个老师只能有一条链接，ON CONFLICT 依赖这个索引
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_pair
	  ON %s (teacher_id, student_id);
	`, models.TeacherStudentTable, models.TeacherStudentTable)).Error; err != nil {
		return err
	}

	// 同一个用户在同一个 workspace 只能有一条成员记录
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_pair
	  ON %s (workspace_id, user_id);
	`, models.WorkspaceMemberTable, models.WorkspaceMemberTable)).Error; err != nil {
		return err
	}

	return nil
}
