package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"organica/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongoDB connects to MongoDB and returns the named database.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type productDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Slug         string             `bson:"slug"`
	Price        float64            `bson:"price"`
	CompareAt    *float64           `bson:"compareAt,omitempty"`
	Image        string             `bson:"image,omitempty"`
	CategorySlug string             `bson:"categorySlug,omitempty"`
	Status       string             `bson:"status"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *productDocument) toModel() models.Product {
	return models.Product{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Slug:         d.Slug,
		Price:        d.Price,
		CompareAt:    d.CompareAt,
		Image:        d.Image,
		CategorySlug: d.CategorySlug,
		Status:       d.Status,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type categoryDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Slug      string             `bson:"slug"`
	SortOrder int                `bson:"sortOrder"`
}

// An order is a single document so header and items are written together.
type orderDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OrderNumber string             `bson:"orderNumber"`
	SessionID   string             `bson:"sessionId"`
	CartToken   string             `bson:"cartToken"`
	CartVersion int64              `bson:"cartVersion"`
	Status      string             `bson:"status"`
	Subtotal    float64            `bson:"subtotal"`
	Shipping    float64            `bson:"shipping"`
	Total       float64            `bson:"total"`
	Currency    string             `bson:"currency"`
	Customer    models.Customer    `bson:"customer"`
	Address     models.Address     `bson:"address"`
	Items       []models.OrderItem `bson:"items"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *orderDocument) toModel() *models.Order {
	return &models.Order{
		ID:          d.ID.Hex(),
		OrderNumber: d.OrderNumber,
		SessionID:   d.SessionID,
		CartToken:   d.CartToken,
		CartVersion: d.CartVersion,
		Status:      d.Status,
		Subtotal:    d.Subtotal,
		Shipping:    d.Shipping,
		Total:       d.Total,
		Currency:    d.Currency,
		Customer:    d.Customer,
		Address:     d.Address,
		Items:       d.Items,
		CreatedAt:   d.CreatedAt,
	}
}

// MongoStorage is the document-store implementation of Storage.
type MongoStorage struct {
	db         *mongo.Database
	products   *mongo.Collection
	categories *mongo.Collection
	orders     *mongo.Collection
}

// NewMongoStorage creates a MongoStorage over db.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{
		db:         db,
		products:   db.Collection("products"),
		categories: db.Collection("categories"),
		orders:     db.Collection("orders"),
	}
}

// CreateIndexes creates the indexes the storefront relies on, including the
// unique checkout index on orders.
func (s *MongoStorage) CreateIndexes(ctx context.Context) error {
	_, err := s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "cartToken", Value: 1}, {Key: "cartVersion", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "sessionId", Value: 1}}},
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	_, err = s.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "categorySlug", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

func (s *MongoStorage) Name() string { return "mongo:" + s.db.Name() }

// Close disconnects the client.
func (s *MongoStorage) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// LookupProduct retrieves an active product by its hex ObjectID. Malformed
// ids are reported as not found.
func (s *MongoStorage) LookupProduct(ctx context.Context, productID string) (*models.ProductSnapshot, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var doc productDocument
	err = s.products.FindOne(ctx, bson.M{"_id": oid, "status": models.ProductStatusActive}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}
	p := doc.toModel()
	return p.Snapshot(), nil
}

// ListProducts returns one page of active products, newest first.
func (s *MongoStorage) ListProducts(ctx context.Context, query models.ProductQuery) ([]models.Product, error) {
	filter := bson.M{"status": models.ProductStatusActive}
	if query.CategorySlug != "" {
		filter["categorySlug"] = query.CategorySlug
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(int64(query.Offset)).
		SetLimit(int64(query.Limit))
	return s.findProducts(ctx, filter, opts)
}

// ListActiveProducts returns every active product, newest first.
func (s *MongoStorage) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	return s.findProducts(ctx, bson.M{"status": models.ProductStatusActive}, opts)
}

func (s *MongoStorage) findProducts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cur, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]models.Product, 0, len(docs))
	for i := range docs {
		products = append(products, docs[i].toModel())
	}
	return products, nil
}

// ListCategories returns categories by sort order, then name.
func (s *MongoStorage) ListCategories(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}, {Key: "name", Value: 1}})
	cur, err := s.categories.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	var docs []categoryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	categories := make([]models.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, models.Category{
			ID:        d.ID.Hex(),
			Name:      d.Name,
			Slug:      d.Slug,
			SortOrder: d.SortOrder,
		})
	}
	return categories, nil
}

// CreateProduct inserts a product and sets its ID to the generated ObjectID.
func (s *MongoStorage) CreateProduct(ctx context.Context, product *models.Product) error {
	now := time.Now()
	doc := productDocument{
		Name:         product.Name,
		Slug:         product.Slug,
		Price:        product.Price,
		CompareAt:    product.CompareAt,
		Image:        product.Image,
		CategorySlug: product.CategorySlug,
		Status:       product.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if doc.Status == "" {
		doc.Status = models.ProductStatusActive
	}

	res, err := s.products.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	product.ID = res.InsertedID.(primitive.ObjectID).Hex()
	product.Status = doc.Status
	product.CreatedAt, product.UpdatedAt = now, now
	return nil
}

// CreateCategory inserts a category.
func (s *MongoStorage) CreateCategory(ctx context.Context, category *models.Category) error {
	res, err := s.categories.InsertOne(ctx, categoryDocument{
		Name:      category.Name,
		Slug:      category.Slug,
		SortOrder: category.SortOrder,
	})
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	category.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// Stats counts products and categories.
func (s *MongoStorage) Stats(ctx context.Context) (*models.CatalogStats, error) {
	products, err := s.products.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	categories, err := s.categories.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	return &models.CatalogStats{Products: products, Categories: categories}, nil
}

// InsertOrderAtomic inserts the order as one document; MongoDB writes a
// single document atomically.
func (s *MongoStorage) InsertOrderAtomic(ctx context.Context, order *models.Order) error {
	doc := orderDocument{
		OrderNumber: order.OrderNumber,
		SessionID:   order.SessionID,
		CartToken:   order.CartToken,
		CartVersion: order.CartVersion,
		Status:      order.Status,
		Subtotal:    order.Subtotal,
		Shipping:    order.Shipping,
		Total:       order.Total,
		Currency:    order.Currency,
		Customer:    order.Customer,
		Address:     order.Address,
		Items:       order.Items,
		CreatedAt:   order.CreatedAt,
	}

	res, err := s.orders.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCheckout
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	order.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// FindOrderByCheckout returns the order placed from the given cart version.
func (s *MongoStorage) FindOrderByCheckout(ctx context.Context, cartToken string, cartVersion int64) (*models.Order, error) {
	return s.findOrder(ctx, bson.M{"cartToken": cartToken, "cartVersion": cartVersion})
}

// GetOrderByID retrieves an order by its hex ObjectID.
func (s *MongoStorage) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return s.findOrder(ctx, bson.M{"_id": oid})
}

func (s *MongoStorage) findOrder(ctx context.Context, filter bson.M) (*models.Order, error) {
	var doc orderDocument
	if err := s.orders.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return doc.toModel(), nil
}
