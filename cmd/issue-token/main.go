package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go-retail-pos/internal/config"
	"go-retail-pos/internal/model"
	"go-retail-pos/pkg/jwt"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// issue-token mints an operator token for a till. Login happens outside this
// service; ops hand the printed token to the front end.
func main() {
	var (
		operatorID = flag.String("id", "", "operator id (random when empty)")
		name       = flag.String("name", "", "operator display name")
		store      = flag.String("store", string(model.WarehouseStoreA), "home store: store_a or store_b")
		privileges = flag.String("privileges", "", "comma separated privilege codes (all when empty)")
	)
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	jwt.Init(cfg.JWTSecret, cfg.JWTTTL)

	// 2. Validate input
	if strings.TrimSpace(*name) == "" {
		log.Fatal("-name is required")
	}
	if !model.Warehouse(*store).IsStore() {
		log.Fatalf("unknown store %q", *store)
	}
	id := *operatorID
	if id == "" {
		id = uuid.NewString()
	}

	codes := model.DefaultPrivilegeCodes()
	if *privileges != "" {
		known := make(map[string]bool, len(codes))
		for _, c := range codes {
			known[c] = true
		}
		codes = nil
		for _, c := range strings.Split(*privileges, ",") {
			c = strings.TrimSpace(c)
			if !known[c] {
				log.Fatalf("unknown privilege %q", c)
			}
			codes = append(codes, c)
		}
	}

	// 3. Sign
	token, err := jwt.GenerateToken(id, *name, *store, codes)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "operator %s (%s) at %s, privileges: %s\n", *name, id, *store, strings.Join(codes, ","))
	fmt.Println(token)
}
