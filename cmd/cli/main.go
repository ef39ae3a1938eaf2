package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/config"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/delivery"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/renewal"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/roast"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/store"
)

func main() {
	addUserCmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	username := addUserCmd.String("username", "", "Username for the new user")
	password := addUserCmd.String("password", "", "Password for the new user")

	renewalsCmd := flag.NewFlagSet("generate-renewals", flag.ExitOnError)
	ignoreGate := renewalsCmd.Bool("ignore-gate", false, "Run even when today is not the configured run day")

	roastCmd := flag.NewFlagSet("roast-overview", flag.ExitOnError)
	roastDate := roastCmd.String("date", "", "Delivery date (YYYY-MM-DD); defaults to the current week")

	if len(os.Args) < 2 {
		fmt.Println("expected 'add-user', 'generate-renewals' or 'roast-overview' subcommand")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-user":
		addUserCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			addUserCmd.PrintDefaults()
			os.Exit(1)
		}
		createUser(*username, *password)
	case "generate-renewals":
		renewalsCmd.Parse(os.Args[2:])
		generateRenewals(*ignoreGate)
	case "roast-overview":
		roastCmd.Parse(os.Args[2:])
		printRoastOverview(*roastDate)
	default:
		fmt.Println("expected 'add-user', 'generate-renewals' or 'roast-overview' subcommand")
		os.Exit(1)
	}
}

func openStore() *store.Store {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./backoffice.db"
	}

	db, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	// Ensure tables exist if running cli before server
	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to init schema: %v", err)
	}
	return db
}

func createUser(username, password string) {
	db := openStore()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	err = db.CreateUser(username, string(hashedPassword))
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User '%s' created successfully.\n", username)
}

func generateRenewals(ignoreGate bool) {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db := openStore()
	registry := delivery.NewRegistry(db)
	generator := renewal.NewGenerator(registry, db, db, cfg.RenewalRunDay)

	result, err := generator.CreateRenewalOrders(ignoreGate)
	if err != nil {
		log.Fatalf("Renewal generation failed: %v", err)
	}

	switch result.Status {
	case renewal.StatusNotRunDay:
		fmt.Printf("Skipped: today is not %s (use -ignore-gate to force).\n", cfg.RenewalRunDay)
	case renewal.StatusNotSubscriptionDelivery:
		fmt.Printf("Skipped: delivery on %s is not a subscription delivery.\n", result.DeliveryDate.Format("2006-01-02"))
	default:
		fmt.Printf("Created %d renewal orders on delivery %d (%s, %s).\n",
			result.OrdersCreated, result.DeliveryID,
			result.DeliveryDate.Format("2006-01-02"), result.DeliveryType)
	}
}

func printRoastOverview(dateStr string) {
	db := openStore()

	var refDate *time.Time
	if dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if err != nil {
			log.Fatalf("Invalid date %q, expected YYYY-MM-DD", dateStr)
		}
		refDate = &parsed
	}

	registry := delivery.NewRegistry(db)
	d, err := registry.GetOrCreate(refDate)
	if err != nil {
		log.Fatalf("Delivery lookup failed: %v", err)
	}

	orders, err := db.GetOrders(store.OrderFilter{DeliveryIDs: []int64{d.ID}})
	if err != nil {
		log.Fatalf("Failed to load orders: %v", err)
	}
	d.Orders = orders

	subs, err := db.GetSubscriptions(store.SubscriptionFilter{
		Statuses: []models.SubscriptionStatus{models.SubscriptionStatusActive},
	})
	if err != nil {
		log.Fatalf("Failed to load subscriptions: %v", err)
	}
	coffees, err := db.GetAllCoffees()
	if err != nil {
		log.Fatalf("Failed to load coffees: %v", err)
	}

	overview, err := roast.GetRoastOverview(subs, d, coffees)
	if err != nil {
		log.Fatalf("Overview failed: %v", err)
	}

	out, err := json.MarshalIndent(overview, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode overview: %v", err)
	}
	fmt.Println(string(out))
}
