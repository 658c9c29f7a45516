package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tanakrit-dev/marketplace-backend/internal/address"
	"github.com/tanakrit-dev/marketplace-backend/internal/cache"
	"github.com/tanakrit-dev/marketplace-backend/internal/cart"
	"github.com/tanakrit-dev/marketplace-backend/internal/config"
	"github.com/tanakrit-dev/marketplace-backend/internal/events"
	"github.com/tanakrit-dev/marketplace-backend/internal/order"
	"github.com/tanakrit-dev/marketplace-backend/internal/product"
	"github.com/tanakrit-dev/marketplace-backend/internal/shop"
	"github.com/tanakrit-dev/marketplace-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := fiber.New()
	setupCORS(app)
	app.Use(requestLogger)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	ensureSchema(db)

	// Redis is optional; without it order detail reads always hit Postgres.
	var orderCache *cache.OrderCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("redis unavailable at %s, running without cache: %v", cfg.RedisAddr, err)
		} else {
			orderCache = cache.NewOrderCache(rdb)
		}
	}

	// Kafka is optional; without brokers order events are simply not emitted.
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.ServiceName)
		producer.Start(context.Background())
		defer producer.Close()
	}

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService)

	shopService := shop.NewService(shop.NewPostgresRepository(db))
	shopHandler := shop.NewHandler(shopService)

	productService := product.NewService(product.NewPostgresRepository(db))
	productHandler := product.NewHandler(productService, shopService)

	addressService := address.NewService(address.NewPostgresRepository(db))
	addressHandler := address.NewHandler(addressService)

	cartService := cart.NewService(cart.NewPostgresRepository(db), productService)
	cartHandler := cart.NewHandler(cartService)

	var publisher order.EventPublisher
	if producer != nil {
		publisher = producer
	}
	orderService := order.NewService(order.NewPostgresRepository(db), productService, cartService, addressService, shopService, publisher)
	orderHandler := order.NewHandler(orderService, orderCache)

	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	shopHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)

	log.Printf("%s listening on %s", cfg.ServiceName, cfg.HTTPAddr)
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Printf("%s %s -> %d (%s)", c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
	return err
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}
	if err := db.Ping(); err != nil {
		panic(err)
	}
	return db
}

// ensureSchema creates the tables on startup so a fresh database works out
// of the box. Timestamps are stored as RFC 3339 TEXT; the stock CHECK
// constraints back up the guarded updates in the repositories.
func ensureSchema(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS shops (
			shop_id SERIAL PRIMARY KEY,
			owner_id INT NOT NULL UNIQUE REFERENCES users(user_id),
			shop_name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			product_id SERIAL PRIMARY KEY,
			shop_id INT NOT NULL REFERENCES shops(shop_id),
			product_name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC NOT NULL DEFAULT 0,
			discount_pct NUMERIC NOT NULL DEFAULT 0,
			delivery_charge NUMERIC NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
			status TEXT NOT NULL,
			image TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS product_variants (
			variant_id SERIAL PRIMARY KEY,
			product_id INT NOT NULL REFERENCES products(product_id),
			variant_name TEXT NOT NULL,
			variant_value TEXT NOT NULL,
			price_diff NUMERIC NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS addresses (
			address_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES users(user_id),
			recipient TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			line1 TEXT NOT NULL,
			line2 TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			postcode TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS carts (
			cart_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL UNIQUE REFERENCES users(user_id),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			cart_item_id SERIAL PRIMARY KEY,
			cart_id INT NOT NULL REFERENCES carts(cart_id),
			product_id INT NOT NULL REFERENCES products(product_id),
			variant_id INT REFERENCES product_variants(variant_id),
			quantity INT NOT NULL CHECK (quantity > 0),
			unit_price NUMERIC NOT NULL DEFAULT 0,
			delivery_charge NUMERIC NOT NULL DEFAULT 0
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS cart_items_line_uniq
			ON cart_items (cart_id, product_id, COALESCE(variant_id, 0))`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			user_id INT NOT NULL REFERENCES users(user_id),
			status TEXT NOT NULL,
			payment_status TEXT,
			payment_method TEXT,
			subtotal_amount NUMERIC NOT NULL DEFAULT 0,
			discount_amount NUMERIC NOT NULL DEFAULT 0,
			shipping_fee NUMERIC NOT NULL DEFAULT 0,
			total_amount NUMERIC NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			shipping_address_id INT NOT NULL REFERENCES addresses(address_id),
			placed_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_item_id SERIAL PRIMARY KEY,
			order_id INT NOT NULL REFERENCES orders(order_id),
			product_id INT NOT NULL REFERENCES products(product_id),
			shop_id INT NOT NULL REFERENCES shops(shop_id),
			variant_id INT REFERENCES product_variants(variant_id),
			quantity INT NOT NULL CHECK (quantity > 0),
			unit_price NUMERIC NOT NULL DEFAULT 0,
			total_price NUMERIC NOT NULL DEFAULT 0,
			delivery_charge NUMERIC NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			carrier TEXT,
			tracking_code TEXT,
			tracking_url TEXT,
			estimated_delivery TEXT,
			delivered_at TEXT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			panic(err)
		}
	}
}
