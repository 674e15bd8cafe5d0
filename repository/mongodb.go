package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/muratkar/tracker_end/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// SnapshotsCollection 快照集合名
const SnapshotsCollection = "kv_snapshots"

var (
	client *mongo.Client
	db     *mongo.Database
	ctx    = context.Background()
)

// InitMongoDB 初始化MongoDB连接
func InitMongoDB(uri, dbName string) error {
	// 设置连接超时
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// 创建客户端
	var err error
	clientOptions := options.Client().ApplyURI(uri)
	client, err = mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return fmt.Errorf("连接MongoDB失败: %w", err)
	}

	// 检查连接
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping MongoDB失败: %w", err)
	}

	// 选择数据库
	db = client.Database(dbName)
	utils.Logger.Info().Str("database", dbName).Msg("已连接到MongoDB")

	return nil
}

// CloseMongoDB 关闭MongoDB连接
func CloseMongoDB() {
	if client != nil {
		if err := client.Disconnect(ctx); err != nil {
			utils.Logger.Error().Err(err).Msg("断开MongoDB连接失败")
			return
		}
		utils.Logger.Info().Msg("已断开MongoDB连接")
	}
}

// snapshotDoc 快照文档结构
type snapshotDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore MongoDB键值快照存储
// 每个键对应一个文档，保存时整体覆盖，满足最后写入者胜出的快照语义
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore 创建MongoDB存储，必须先调用InitMongoDB
func NewMongoStore() *MongoStore {
	return &MongoStore{collection: db.Collection(SnapshotsCollection)}
}

// Load 读取快照，键不存在或解析失败时返回 ok=false
func (s *MongoStore) Load(loadCtx context.Context, key string) ([]byte, bool) {
	var doc snapshotDoc
	err := s.collection.FindOne(loadCtx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			utils.LogError(err, map[string]interface{}{"key": key}, "读取快照失败")
		}
		return nil, false
	}
	utils.LogStoreOperation("load", key, len(doc.Value))
	return []byte(doc.Value), true
}

// Save 覆盖写入快照，网络类错误会重试
func (s *MongoStore) Save(saveCtx context.Context, key string, value []byte) error {
	doc := snapshotDoc{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := s.collection.ReplaceOne(saveCtx, bson.M{"_id": key}, doc,
			options.Replace().SetUpsert(true))
		if err == nil {
			utils.LogStoreOperation("save", key, len(value))
			return nil
		}
		lastErr = err
		if !isRetryableError(err) {
			break
		}
		utils.Logger.Error().Err(err).Msgf("快照写入失败，重试 (%d/3)", attempt)
		time.Sleep(time.Duration(200*attempt) * time.Millisecond)
	}
	return lastErr
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	// MongoDB可重试错误代码
	retryableCodes := map[int]bool{
		6:     true, // HostUnreachable
		7:     true, // HostNotFound
		89:    true, // NetworkTimeout
		91:    true, // ShutdownInProgress
		189:   true, // PrimarySteppedDown
		10107: true, // NotMaster
		11600: true, // InterruptedAtShutdown
		11602: true, // InterruptedDueToReplStateChange
	}

	if cmdErr, ok := err.(mongo.CommandError); ok {
		return retryableCodes[int(cmdErr.Code)]
	}

	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

// GetDatabaseStatus 获取数据库状态
func GetDatabaseStatus() (map[string]interface{}, error) {
	coll := db.Collection(SnapshotsCollection)

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("获取快照计数失败: %w", err)
	}

	keys := make([]map[string]interface{}, 0)
	cursor, err := coll.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1, "updatedAt": 1}))
	if err == nil {
		defer cursor.Close(ctx)
		var docs []struct {
			Key       string    `bson:"_id"`
			UpdatedAt time.Time `bson:"updatedAt"`
		}
		if err := cursor.All(ctx, &docs); err == nil {
			for _, doc := range docs {
				keys = append(keys, map[string]interface{}{
					"key":       doc.Key,
					"updatedAt": doc.UpdatedAt,
				})
			}
		}
	}

	return map[string]interface{}{
		"collection": SnapshotsCollection,
		"count":      count,
		"keys":       keys,
	}, nil
}
