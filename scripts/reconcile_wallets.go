package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Audits every wallet against the settled ledger and prints the rows whose
// projected balance drifted. Run with: go run scripts/reconcile_wallets.go
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	rows, err := db.Query(`
		SELECT w.user_id, w.balance,
		       COALESCE(credits.total, 0) - COALESCE(debits.total, 0) AS replayed
		FROM wallets w
		LEFT JOIN (
			SELECT transaction_to_id AS user_id, SUM(amount) AS total
			FROM transactions
			WHERE debit_credit = 2 AND status = 'settled'
			GROUP BY transaction_to_id
		) credits ON credits.user_id = w.user_id
		LEFT JOIN (
			SELECT transaction_from_id AS user_id, SUM(amount) AS total
			FROM transactions
			WHERE debit_credit = 1 AND status = 'settled'
			GROUP BY transaction_from_id
		) debits ON debits.user_id = w.user_id
		WHERE w.balance <> COALESCE(credits.total, 0) - COALESCE(debits.total, 0)
	`)
	if err != nil {
		log.Fatal("Audit query failed:", err)
	}
	defer rows.Close()

	drifted := 0
	for rows.Next() {
		var userID int64
		var balance, replayed string
		if err := rows.Scan(&userID, &balance, &replayed); err != nil {
			log.Fatal("Scan failed:", err)
		}
		fmt.Printf("DRIFT user=%d projected=%s replayed=%s\n", userID, balance, replayed)
		drifted++
	}
	if err := rows.Err(); err != nil {
		log.Fatal("Row iteration failed:", err)
	}

	if drifted == 0 {
		fmt.Println("All wallets reconcile against the ledger")
	} else {
		fmt.Printf("%d wallet(s) drifted\n", drifted)
		os.Exit(1)
	}
}
