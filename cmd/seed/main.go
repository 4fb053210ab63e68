package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"freightdesk/internal/config"
	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/repositories"
	"freightdesk/internal/domain/services"
	"freightdesk/internal/repository/memory"
	"freightdesk/internal/repository/postgres"
	"freightdesk/internal/service"
)

const seedActorID = "00000000-0000-0000-0000-000000000001"

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	clearData := flag.Bool("clear-data", false, "Clear all clients and folders (keep schema)")
	dryRun := flag.Bool("dry-run", false, "Run the seed against in-memory repositories, no database needed")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()

	if *dryRun {
		log.Println("Dry run: seeding in-memory repositories")
		clientRepo := memory.NewClientRepository()
		folderRepo := memory.NewFolderRepository()
		seedData(ctx, logger, clientRepo, folderRepo)
		log.Println("Dry run complete")
		return
	}

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	// Create database connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		log.Println("Clearing existing clients and folders...")
		if err := clearAllData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared")
		return
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	clientRepo := postgres.NewClientRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)

	seedData(ctx, logger, clientRepo, folderRepo)
	log.Println("Seeding complete")
}

// seedData creates the demo clients and folders through the service
// layer, so validation and defaults apply exactly as in production.
func seedData(ctx context.Context, logger *slog.Logger, clientRepo repositories.ClientRepository, folderRepo repositories.FolderRepository) {
	validator := service.NewClientValidator(clientRepo, logger)
	clientService := service.NewClientService(clientRepo, folderRepo, logger)
	folderService := service.NewFolderService(folderRepo, clientRepo, logger)

	for i, req := range seedClients() {
		result, err := validator.ValidateClientData(ctx, req, nil)
		if err != nil {
			log.Printf("Failed to validate client %d: %v", i+1, err)
			continue
		}
		if !result.IsValid {
			log.Printf("Client %d rejected by validation: %+v", i+1, result.Errors)
			continue
		}

		client, err := clientService.Create(ctx, req, seedActorID)
		if err != nil {
			log.Printf("Failed to create client %d: %v", i+1, err)
			continue
		}
		log.Printf("Created client %d: %s (%s)", i+1, client.DisplayName(), client.ID)

		for _, reference := range seedFolderReferences(i) {
			folder, err := folderService.CreateFolder(ctx, &services.CreateFolderRequest{
				ClientID:  client.ID,
				Reference: reference,
			}, seedActorID)
			if err != nil {
				log.Printf("Failed to create folder %q: %v", reference, err)
				continue
			}
			log.Printf("  Created folder %s (%s)", folder.Reference, folder.ID)
		}
	}
}

func seedClients() []*services.CreateClientRequest {
	website := "https://www.transnord.example"
	creditLimit := 75_000.0
	riskMedium := models.RiskMedium
	priorityHigh := models.PriorityHigh

	return []*services.CreateClientRequest{
		{
			Type: models.ClientTypeBusiness,
			Business: &models.BusinessInfo{
				CompanyName:        "TransNord Logistics",
				RegistrationNumber: "552 100 554",
				Industry:           "transport",
				Website:            &website,
			},
			Contact: models.ContactInfo{
				Email:       "contact@transnord.example",
				Phone:       "+33 1 44 55 66 77",
				ContactType: "primary",
				AddressLine: "12 quai de la Gironde",
				City:        "Paris",
				PostalCode:  "75019",
				Country:     "FR",
			},
			Commercial: &services.CommercialInfoPatch{
				CreditLimit: &creditLimit,
				RiskLevel:   &riskMedium,
				Priority:    &priorityHigh,
			},
			Tags: []string{"vip", "road-freight"},
		},
		{
			Type: models.ClientTypeBusiness,
			Business: &models.BusinessInfo{
				CompanyName:        "Hanse Cargo GmbH",
				RegistrationNumber: "HRB 123456",
				Industry:           "manufacturing",
			},
			Contact: models.ContactInfo{
				Email:      "einkauf@hansecargo.example",
				Phone:      "+49 40 1234567",
				City:       "Hamburg",
				PostalCode: "20095",
				Country:    "DE",
			},
			Tags: []string{"sea-freight"},
		},
		{
			Type: models.ClientTypeIndividual,
			Individual: &models.IndividualInfo{
				FirstName: "Claire",
				LastName:  "Morel",
			},
			Contact: models.ContactInfo{
				Email:      "claire.morel@example.net",
				Phone:      "+33 6 12 34 56 78",
				City:       "Lyon",
				PostalCode: "69002",
				Country:    "FR",
			},
		},
	}
}

func seedFolderReferences(clientIndex int) []string {
	switch clientIndex {
	case 0:
		return []string{"FD-2025-0001", "FD-2025-0002"}
	case 1:
		return []string{"FD-2025-0003"}
	default:
		return nil
	}
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Create clients table
	createClients := `
		CREATE TABLE IF NOT EXISTS ` + tables.Clients + ` (
			id UUID PRIMARY KEY,
			client_type TEXT NOT NULL CHECK (client_type IN ('individual', 'business')),
			individual_info JSONB,
			business_info JSONB,
			contact_info JSONB NOT NULL,
			commercial_info JSONB NOT NULL,
			commercial_history JSONB NOT NULL,
			status TEXT NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			created_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			deleted_by TEXT,
			deletion_reason TEXT
		)
	`
	if _, err := pool.Exec(ctx, createClients); err != nil {
		return err
	}

	// Create folders table
	createFolders := `
		CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY,
			client_id UUID NOT NULL REFERENCES ` + tables.Clients + `(id) ON DELETE CASCADE,
			reference TEXT NOT NULL,
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			created_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createFolders); err != nil {
		return err
	}

	// Uniqueness applies only to live records; soft-deleted rows free
	// their email and registration number for reuse.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `clients_email ON ` + tables.Clients +
			` (lower(contact_info->>'email')) WHERE deleted_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `clients_registration ON ` + tables.Clients +
			` ((business_info->>'registration_number')) WHERE deleted_at IS NULL AND business_info->>'registration_number' IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `clients_status ON ` + tables.Clients + ` (status) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `clients_tags ON ` + tables.Clients + ` USING GIN (tags)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_client_status ON ` + tables.Folders + ` (client_id, status)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Folders,
		tables.Clients,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  Dropped %s", table)
	}

	return nil
}

// clearAllData clears all folders and clients
func clearAllData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Folders); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Clients); err != nil {
		return err
	}
	return nil
}
