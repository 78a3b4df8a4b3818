package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"nestflow/internal/auth"
	"nestflow/internal/database"
	"nestflow/internal/domain"
	"nestflow/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Hosts []seedHost `yaml:"hosts"`
}

type seedHost struct {
	Username   string         `yaml:"username"`
	Email      string         `yaml:"email"`
	Password   string         `yaml:"password"`
	Properties []seedProperty `yaml:"properties"`
}

type seedProperty struct {
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description"`
	PricePerNight float64  `yaml:"price_per_night"`
	Location      string   `yaml:"location"`
	MaxGuests     int      `yaml:"max_guests"`
	Amenities     []string `yaml:"amenities"`
	Images        []string `yaml:"images"`
}

func (p seedProperty) toModel(hostID int64) *models.Property {
	amenities := models.Amenities(p.Amenities)
	if amenities == nil {
		amenities = models.Amenities{}
	}
	return &models.Property{
		HostID:        hostID,
		Title:         p.Title,
		Description:   p.Description,
		PricePerNight: p.PricePerNight,
		Location:      p.Location,
		MaxGuests:     p.MaxGuests,
		Amenities:     amenities,
	}
}

type seedStats struct {
	hosts, created, updated int
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath = flag.String("seed", "configs/seed.yaml", "path to seed.yaml")
		dbPath   = flag.String("db", "./data/nestflow.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	var seed seedFile
	if err = yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed: %w", err)
	}
	if len(seed.Hosts) == 0 {
		return fmt.Errorf("no hosts in yaml")
	}

	db, err := database.NewSQLite(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := apply(ctx, db, seed)
	if err != nil {
		return err
	}

	fmt.Printf("done: hosts=%d created=%d updated=%d\n", stats.hosts, stats.created, stats.updated)
	return nil
}

// apply is idempotent: hosts match on email, properties on (host, title).
func apply(ctx context.Context, db *database.DB, seed seedFile) (seedStats, error) {
	var stats seedStats

	existing, err := db.ListProperties(ctx)
	if err != nil {
		return stats, fmt.Errorf("list properties: %w", err)
	}
	byKey := make(map[string]int64, len(existing))
	for _, p := range existing {
		byKey[propertyKey(p.HostID, p.Title)] = p.ID
	}

	for _, h := range seed.Hosts {
		if h.Email == "" {
			continue
		}
		host, err := ensureHost(ctx, db, h)
		if err != nil {
			return stats, err
		}
		stats.hosts++

		for _, sp := range h.Properties {
			if sp.Title == "" {
				continue
			}
			property := sp.toModel(host.ID)
			if id, ok := byKey[propertyKey(host.ID, sp.Title)]; ok {
				property.ID = id
				if err := db.UpdateProperty(ctx, property); err != nil {
					return stats, fmt.Errorf("update %s: %w", sp.Title, err)
				}
				stats.updated++
				continue
			}

			if err := db.CreateProperty(ctx, property); err != nil {
				return stats, fmt.Errorf("create %s: %w", sp.Title, err)
			}
			if len(sp.Images) > 0 {
				if _, err := db.AddPropertyImages(ctx, property.ID, sp.Images); err != nil {
					return stats, fmt.Errorf("images for %s: %w", sp.Title, err)
				}
			}
			byKey[propertyKey(host.ID, sp.Title)] = property.ID
			stats.created++
		}
	}
	return stats, nil
}

func ensureHost(ctx context.Context, db *database.DB, h seedHost) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(h.Email))
	user, err := db.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("get %s: %w", email, err)
	}

	hash, err := auth.HashPassword(h.Password, bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", email, err)
	}
	user = &models.User{
		Username:     h.Username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleHost,
	}
	if err := db.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create %s: %w", email, err)
	}
	return user, nil
}

func propertyKey(hostID int64, title string) string {
	return fmt.Sprintf("%d/%s", hostID, title)
}
