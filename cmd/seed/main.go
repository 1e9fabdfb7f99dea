package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"cinetix/internal/discounts"
	"cinetix/internal/events"
	"cinetix/internal/memberships"
	"cinetix/internal/products"
	"cinetix/internal/shared/config"
	"cinetix/internal/shared/database"
	"cinetix/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Cinetix Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Order matters due to foreign key constraints
	// Delete in reverse dependency order
	tables := []string{
		"push_subscriptions",
		"payments",
		"order_items",
		"orders",
		"reservations",
		"discounts",
		"products",
		"seats",
		"events",
		"users",
		"membership_tiers",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	tierIDs, err := s.SeedMembershipTiers()
	if err != nil {
		return fmt.Errorf("failed to seed membership tiers: %w", err)
	}

	userIDs, err := s.SeedUsers(tierIDs)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if _, err := s.SeedEvents(userIDs["admin"]); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	if err := s.SeedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if err := s.SeedDiscounts(tierIDs); err != nil {
		return fmt.Errorf("failed to seed discounts: %w", err)
	}

	// Clear Redis so no stale seat holds survive the reseed
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedMembershipTiers creates the GOLD and SILVER membership tiers
func (s *Seeder) SeedMembershipTiers() (map[string]uuid.UUID, error) {
	fmt.Println("  🏅 Seeding membership tiers...")

	tierIDs := make(map[string]uuid.UUID)

	tiersData := []struct {
		key      string
		name     string
		priority int
	}{
		{"gold", "Gold", 1},
		{"silver", "Silver", 2},
	}

	for _, tierData := range tiersData {
		tier := memberships.Tier{
			ID:        uuid.New(),
			Name:      tierData.name,
			Priority:  tierData.priority,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&tier).Error; err != nil {
			return nil, fmt.Errorf("failed to create tier %s: %w", tier.Name, err)
		}

		tierIDs[tierData.key] = tier.ID
		fmt.Printf("    ✅ Created membership tier: %s (priority %d)\n", tier.Name, tier.Priority)
	}

	return tierIDs, nil
}

// SeedUsers creates 1 admin and 3 regular users; two of them carry memberships
func (s *Seeder) SeedUsers(tierIDs map[string]uuid.UUID) (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// Hash password for all users (using "qwerty")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	goldTier := tierIDs["gold"]
	silverTier := tierIDs["silver"]

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
		tierID    *uuid.UUID
	}{
		{"admin", "Admin", "User", "admin@cinetix.local", users.RoleAdmin, nil},
		{"gold_member", "Greta", "Olsen", "greta@cinetix.local", users.RoleUser, &goldTier},
		{"silver_member", "Sam", "Iyer", "sam@cinetix.local", users.RoleUser, &silverTier},
		{"walkin", "Wanda", "Novak", "wanda@cinetix.local", users.RoleUser, nil},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:               uuid.New(),
			FirstName:        userData.firstName,
			LastName:         userData.lastName,
			Email:            userData.email,
			Password:         string(hashedPassword),
			Role:             userData.role,
			MembershipTierID: userData.tierID,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedEvents creates sample screenings with a full seat map each
func (s *Seeder) SeedEvents(adminID uuid.UUID) ([]uuid.UUID, error) {
	fmt.Println("  🎬 Seeding events...")

	var eventIDs []uuid.UUID

	eventsData := []struct {
		name        string
		description string
		venue       string
		basePrice   float64
		daysFromNow int
		status      events.EventStatus
	}{
		{
			name:        "Midnight Premiere: Solar Drift",
			description: "Opening night screening of the year's most anticipated science fiction epic.",
			venue:       "Screen 1 - Grand Hall",
			basePrice:   1200.0,
			daysFromNow: 7,
			status:      events.StatusPublished,
		},
		{
			name:        "Classic Matinee: The Third Reel",
			description: "Restored 4K print of the 1962 noir classic, followed by a short introduction.",
			venue:       "Screen 2 - Heritage Room",
			basePrice:   600.0,
			daysFromNow: 14,
			status:      events.StatusPublished,
		},
		{
			name:        "Director's Cut Marathon",
			description: "Back-to-back extended editions with two intermissions. Bring supplies.",
			venue:       "Screen 1 - Grand Hall",
			basePrice:   1800.0,
			daysFromNow: 30,
			status:      events.StatusDraft,
		},
	}

	for _, eventData := range eventsData {
		event := events.Event{
			ID:          uuid.New(),
			Name:        eventData.name,
			Description: eventData.description,
			Venue:       eventData.venue,
			DateTime:    time.Now().AddDate(0, 0, eventData.daysFromNow),
			BasePrice:   eventData.basePrice,
			Status:      eventData.status,
			CreatedBy:   adminID,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&event).Error; err != nil {
			return nil, fmt.Errorf("failed to create event %s: %w", event.Name, err)
		}

		eventIDs = append(eventIDs, event.ID)
		fmt.Printf("    ✅ Created event: %s\n", event.Name)

		if err := s.createSeatMap(event.ID); err != nil {
			return nil, fmt.Errorf("failed to create seats for event %s: %w", event.Name, err)
		}
	}

	return eventIDs, nil
}

// createSeatMap creates the standard auditorium layout: row A gold, row B
// silver, rows C-D bronze
func (s *Seeder) createSeatMap(eventID uuid.UUID) error {
	rows := []struct {
		row   string
		tier  events.SeatTier
		seats int
	}{
		{"A", events.TierGold, 8},
		{"B", events.TierSilver, 10},
		{"C", events.TierBronze, 12},
		{"D", events.TierBronze, 12},
	}

	total := 0
	for _, rowData := range rows {
		for i := 1; i <= rowData.seats; i++ {
			seat := events.Seat{
				ID:         uuid.New(),
				EventID:    eventID,
				SeatNumber: fmt.Sprintf("%s%d", rowData.row, i),
				Row:        rowData.row,
				Tier:       rowData.tier,
				CreatedAt:  time.Now(),
			}

			if err := s.db.PostgreSQL.Create(&seat).Error; err != nil {
				return fmt.Errorf("failed to create seat %s: %w", seat.SeatNumber, err)
			}
			total++
		}
	}

	fmt.Printf("      ✅ Created %d seats\n", total)
	return nil
}

// SeedProducts creates concession products
func (s *Seeder) SeedProducts() error {
	fmt.Println("  🍿 Seeding products...")

	productsData := []struct {
		name        string
		description string
		price       float64
		active      bool
	}{
		{"Popcorn (Large)", "Freshly popped, salted or sweet.", 350.0, true},
		{"Nachos with Cheese", "Corn nachos with warm cheese dip.", 300.0, true},
		{"Soft Drink (Regular)", "Choice of cola, lemonade or orange.", 180.0, true},
		{"Combo: Popcorn + Drink", "Large popcorn with a regular soft drink.", 480.0, true},
		{"Collector Poster", "Limited print from last season.", 250.0, false},
	}

	for _, productData := range productsData {
		product := products.Product{
			ID:          uuid.New(),
			Name:        productData.name,
			Description: productData.description,
			Price:       productData.price,
			Active:      productData.active,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product %s: %w", product.Name, err)
		}

		fmt.Printf("    ✅ Created product: %s (%.0f)\n", product.Name, product.Price)
	}

	return nil
}

// SeedDiscounts creates sample discount codes
func (s *Seeder) SeedDiscounts(tierIDs map[string]uuid.UUID) error {
	fmt.Println("  🎟️ Seeding discounts...")

	goldTier := tierIDs["gold"]
	weekAgo := time.Now().AddDate(0, 0, -7)
	monthAhead := time.Now().AddDate(0, 1, 0)

	discountsData := []struct {
		code       string
		percentage float64
		validFrom  *time.Time
		validUntil *time.Time
		tierID     *uuid.UUID
	}{
		{"SAVE10", 10.0, nil, nil, nil},
		{"OPENING15", 15.0, &weekAgo, &monthAhead, nil},
		{"GOLD20", 20.0, nil, nil, &goldTier},
	}

	for _, discountData := range discountsData {
		discount := discounts.Discount{
			ID:         uuid.New(),
			Code:       discounts.NormalizeCode(discountData.code),
			Percentage: discountData.percentage,
			ValidFrom:  discountData.validFrom,
			ValidUntil: discountData.validUntil,
			TierID:     discountData.tierID,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&discount).Error; err != nil {
			return fmt.Errorf("failed to create discount %s: %w", discount.Code, err)
		}

		fmt.Printf("    ✅ Created discount: %s (%.0f%%)\n", discount.Code, discount.Percentage)
	}

	return nil
}
