package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Audits every user's stored XOGS balance against the sum of their
// transactions and prints the ones that drifted. Run the admin resync
// endpoint for any user this flags.
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Build connection string
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	// Connect to database
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Connected to database successfully")

	rows, err := db.Query(`
		SELECT u.id, u.twitter_username, u.xogs_balance, COALESCE(SUM(t.amount), 0) AS tx_sum
		FROM users u
		LEFT JOIN transactions t ON t.user_id = u.id
		GROUP BY u.id, u.twitter_username, u.xogs_balance
		HAVING u.xogs_balance <> COALESCE(SUM(t.amount), 0)
		ORDER BY u.id
	`)
	if err != nil {
		log.Fatalf("Failed to query balances: %v", err)
	}
	defer rows.Close()

	drifted := 0
	for rows.Next() {
		var (
			id       int64
			username string
			balance  int64
			txSum    int64
		)
		if err := rows.Scan(&id, &username, &balance, &txSum); err != nil {
			log.Fatalf("Failed to scan row: %v", err)
		}
		drifted++
		fmt.Printf("⚠️  user %d (%s): balance=%d tx_sum=%d drift=%d\n",
			id, username, balance, txSum, balance-txSum)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Row iteration failed: %v", err)
	}

	if drifted == 0 {
		fmt.Println("✅ All balances match their transaction sums")
	} else {
		fmt.Printf("Found %d drifted balance(s); resync them via POST /api/admin/users/:id/resync\n", drifted)
	}
}
