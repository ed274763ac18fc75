// Command seed loads tag and ingredient reference data from CSV files.
// Ingredient rows are "name,measurement_unit"; tag rows are
// "name,color,slug".
package main

import (
	"encoding/csv"
	"flag"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/logger"
	"github.com/platefeed/backend/internal/models"
)

func main() {
	ingredientsPath := flag.String("ingredients", "", "path to ingredients CSV")
	tagsPath := flag.String("tags", "", "path to tags CSV")
	flag.Parse()

	logger.Init()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	if *ingredientsPath != "" {
		count := 0
		err := readCSV(*ingredientsPath, 2, func(record []string) error {
			ingredient := models.Ingredient{Name: record[0], MeasurementUnit: record[1]}
			if err := db.Create(&ingredient).Error; err != nil {
				return err
			}
			count++
			return nil
		})
		if err != nil {
			logger.Fatal("failed to load ingredients", zap.Error(err))
		}
		logger.Info("loaded ingredients", zap.Int("count", count))
	}

	if *tagsPath != "" {
		count := 0
		err := readCSV(*tagsPath, 3, func(record []string) error {
			tag := models.Tag{Name: record[0], Color: record[1], Slug: record[2]}
			if err := db.Create(&tag).Error; err != nil {
				return err
			}
			count++
			return nil
		})
		if err != nil {
			logger.Fatal("failed to load tags", zap.Error(err))
		}
		logger.Info("loaded tags", zap.Int("count", count))
	}
}

func readCSV(path string, fields int, handle func([]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = fields
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := handle(record); err != nil {
			return err
		}
	}
}
