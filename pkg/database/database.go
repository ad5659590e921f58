package database

import (
	"fmt"
	"log"

	"talent_assessment_backend/internal/config"
	"talent_assessment_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// release 模式下默认跳过迁移，通过 -migrate / -migrate-only 显式触发
func shouldMigrate(cfg *config.Config) bool {
	return cfg.ForceMigrate || cfg.Server.Mode != "release"
}

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if shouldMigrate(cfg) {
		// 自然键唯一索引随模型定义一起迁移，upsert的并发正确性依赖这些约束
		err = db.AutoMigrate(
			&model.AssessmentSession{},
			&model.AssessmentParticipant{},
			&model.TbeiResponse{},
			&model.HipoAssessment{},
			&model.QuizResponse{},
		)
		if err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}
