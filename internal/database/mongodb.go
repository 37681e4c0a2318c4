package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"taskboard-notifier/internal/config"
	"taskboard-notifier/internal/models"
	"taskboard-notifier/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBClient wraps the MongoDB collections backing the task table.
// The live table is ordered by a stable `row` sequence key: rows keep their
// number for life, so deleting high rows first never shifts a surviving row.
type MongoDBClient struct {
	client              *mongo.Client
	database            *mongo.Database
	tasksCollection     *mongo.Collection
	archiveCollection   *mongo.Collection
	auditCollection     *mongo.Collection
	directoryCollection *mongo.Collection
}

// archivedTask is a live row plus the moment it was moved. The task fields
// are stored verbatim.
type archivedTask struct {
	models.Task `bson:",inline"`
	ArchivedAt  time.Time `bson:"archivedAt"`
}

// directoryEntry maps an assignee name to a chat address
type directoryEntry struct {
	Name    string `bson:"name"`
	Address string `bson:"address"`
}

// NewMongoDBClient connects to MongoDB and prepares the task table collections
func NewMongoDBClient(cfg config.MongoDBConfig) (*MongoDBClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Build connection URI
	uri := cfg.URI
	if uri == "" {
		// Build URI from components if URI not provided
		if cfg.Username != "" && cfg.Password != "" {
			// Use url.UserPassword to properly encode username and password
			userInfo := url.UserPassword(cfg.Username, cfg.Password)
			uri = fmt.Sprintf("mongodb://%s@%s:%s/%s?authSource=%s",
				userInfo.String(),
				cfg.Host,
				cfg.Port,
				cfg.Database,
				url.QueryEscape(cfg.AuthSource),
			)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%s/%s",
				cfg.Host,
				cfg.Port,
				cfg.Database,
			)
		}
	}

	// Log connection attempt (mask password for security)
	logURI := uri
	if cfg.Password != "" && cfg.Username != "" {
		userInfo := url.User(cfg.Username)
		authSource := cfg.AuthSource
		if authSource == "" {
			authSource = "admin"
		}
		logURI = fmt.Sprintf("mongodb://%s:***@%s:%s/%s?authSource=%s",
			userInfo.String(), cfg.Host, cfg.Port, cfg.Database, url.QueryEscape(authSource))
	}
	log.Printf("Attempting to connect to MongoDB at %s", logURI)

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", logURI, err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", logURI, err)
	}

	database := client.Database(cfg.Database)
	tasksCollection := database.Collection("tasks")
	archiveCollection := database.Collection("archive")
	auditCollection := database.Collection("audit_log")
	directoryCollection := database.Collection("directory")

	// Unique index on the row sequence key
	rowIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "row", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err = tasksCollection.Indexes().CreateOne(ctx, rowIndexModel)
	if err != nil {
		// Index might already exist, that's okay
		fmt.Printf("Note: MongoDB tasks index creation: %v\n", err)
	}

	// Unique index on task IDs; the same constraint guards the archive so a
	// move can never duplicate an ID across the two collections.
	idIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "taskId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, coll := range []*mongo.Collection{tasksCollection, archiveCollection} {
		_, err = coll.Indexes().CreateOne(ctx, idIndexModel)
		if err != nil {
			fmt.Printf("Note: MongoDB taskId index creation: %v\n", err)
		}
	}

	// Unique index on directory names
	nameIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err = directoryCollection.Indexes().CreateOne(ctx, nameIndexModel)
	if err != nil {
		fmt.Printf("Note: MongoDB directory index creation: %v\n", err)
	}

	return &MongoDBClient{
		client:              client,
		database:            database,
		tasksCollection:     tasksCollection,
		archiveCollection:   archiveCollection,
		auditCollection:     auditCollection,
		directoryCollection: directoryCollection,
	}, nil
}

// Close closes the MongoDB client connection
func (c *MongoDBClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// ListTasks returns all live rows in row order
func (c *MongoDBClient) ListTasks(ctx context.Context) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "row", Value: 1}})
	cursor, err := c.tasksCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	return tasks, nil
}

// GetTask returns the live row with the given row number
func (c *MongoDBClient) GetTask(ctx context.Context, row int) (models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var task models.Task
	err := c.tasksCollection.FindOne(ctx, bson.M{"row": row}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Task{}, fmt.Errorf("row %d not found", row)
		}
		return models.Task{}, fmt.Errorf("failed to query row %d: %w", row, err)
	}

	return task, nil
}

// SetNotifyFlag updates the notify flag of one live row
func (c *MongoDBClient) SetNotifyFlag(ctx context.Context, row int, value bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"notifyFlag": value}}
	_, err := c.tasksCollection.UpdateOne(ctx, bson.M{"row": row}, update)
	if err != nil {
		return fmt.Errorf("failed to update notify flag on row %d: %w", row, err)
	}

	return nil
}

// DeleteRow removes one live row. Row numbers of surviving rows are never
// renumbered, so callers may delete any set of rows in descending order
// without invalidating the remaining numbers.
func (c *MongoDBClient) DeleteRow(ctx context.Context, row int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.tasksCollection.DeleteOne(ctx, bson.M{"row": row})
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", row, err)
	}

	return nil
}

// InsertTasks appends tasks to the live table in input order, assigning the
// next free row numbers
func (c *MongoDBClient) InsertTasks(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	nextRow, err := c.nextRow(ctx)
	if err != nil {
		return err
	}

	docs := make([]interface{}, len(tasks))
	for i := range tasks {
		tasks[i].Row = nextRow + i
		docs[i] = tasks[i]
	}

	// Ordered insert keeps input order
	_, err = c.tasksCollection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to insert tasks: %w", err)
	}

	return nil
}

// nextRow returns one past the highest live row number
func (c *MongoDBClient) nextRow(ctx context.Context) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "row", Value: -1}})

	var last models.Task
	err := c.tasksCollection.FindOne(ctx, bson.M{}, opts).Decode(&last)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to query last row: %w", err)
	}

	return last.Row + 1, nil
}

// AppendArchive appends tasks to the archive in batch order. The collection
// is created implicitly on first write.
func (c *MongoDBClient) AppendArchive(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now()
	docs := make([]interface{}, len(tasks))
	for i, task := range tasks {
		docs[i] = archivedTask{Task: task, ArchivedAt: now}
	}

	_, err := c.archiveCollection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to append to archive: %w", err)
	}

	return nil
}

// ListArchive returns all archived rows in archive order
func (c *MongoDBClient) ListArchive(ctx context.Context) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := c.archiveCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}

	return tasks, nil
}

// AppendAudit appends one audit log entry
func (c *MongoDBClient) AppendAudit(ctx context.Context, entry models.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if entry.ID == "" {
		entry.ID = utils.GenerateUUID()
	}

	_, err := c.auditCollection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// Directory loads the assignee directory (name -> chat address). Missing
// entries mean the renderer falls back to the plain name.
func (c *MongoDBClient) Directory(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := c.directoryCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query directory: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []directoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode directory: %w", err)
	}

	directory := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.Name != "" && entry.Address != "" {
			directory[entry.Name] = entry.Address
		}
	}

	return directory, nil
}

// UpsertDirectoryEntry adds or replaces one assignee directory mapping
func (c *MongoDBClient) UpsertDirectoryEntry(ctx context.Context, name, address string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"name": name}
	update := bson.M{"$set": directoryEntry{Name: name, Address: address}}

	_, err := c.directoryCollection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert directory entry: %w", err)
	}

	return nil
}
