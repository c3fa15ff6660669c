package main

import (
	"encoding/csv"
	"erudio/config"
	"erudio/database"
	courseModels "erudio/models/course"
	"erudio/utils"
	"log"
	"os"
	"strconv"
	"strings"
)

func main() {
	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	// Open CSV file
	file, err := os.Open("Catalog.csv")
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	// Skip header row
	header := records[0]
	log.Printf("CSV Headers: %v", header)
	log.Printf("Total rows to import: %d", len(records)-1)

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.TrimSpace(h)] = i
	}

	field := func(row []string, name string) string {
		idx, ok := headerIndex[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	inserted := 0
	updated := 0
	skipped := 0

	for i, row := range records[1:] {
		if i%100 == 0 {
			log.Printf("Processing row %d...", i+1)
		}

		title := field(row, "Title")
		if title == "" {
			skipped++
			continue
		}

		instructorID, err := strconv.ParseUint(field(row, "InstructorID"), 10, 64)
		if err != nil || instructorID == 0 {
			log.Printf("Row %d: invalid InstructorID, skipping", i+1)
			skipped++
			continue
		}

		price, err := strconv.ParseFloat(field(row, "Price"), 64)
		if err != nil {
			price = 0
		}

		slug := field(row, "Slug")
		if slug == "" {
			slug = utils.Slugify(title)
		}

		course := courseModels.Course{
			Title:            title,
			Slug:             slug,
			ShortDescription: field(row, "ShortDescription"),
			LongDescription:  field(row, "LongDescription"),
			InstructorID:     uint(instructorID),
			Price:            price,
			ThumbnailURL:     field(row, "ThumbnailURL"),
			IsPaid:           price > 0,
			IsPublished:      strings.EqualFold(field(row, "IsPublished"), "true"),
		}

		var existing courseModels.Course
		err = database.Database.Db.Where("slug = ?", slug).First(&existing).Error
		if err == nil {
			if err := database.Database.Db.Model(&existing).Updates(map[string]interface{}{
				"title":             course.Title,
				"short_description": course.ShortDescription,
				"long_description":  course.LongDescription,
				"price":             course.Price,
				"thumbnail_url":     course.ThumbnailURL,
				"is_paid":           course.IsPaid,
				"is_published":      course.IsPublished,
			}).Error; err != nil {
				log.Printf("Row %d: failed to update %s: %v", i+1, slug, err)
				skipped++
				continue
			}
			updated++
			continue
		}

		if err := database.Database.Db.Create(&course).Error; err != nil {
			log.Printf("Row %d: failed to insert %s: %v", i+1, slug, err)
			skipped++
			continue
		}
		inserted++
	}

	log.Printf("Import complete. Inserted: %d, Updated: %d, Skipped: %d", inserted, updated, skipped)
}
