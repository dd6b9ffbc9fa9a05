//go:build wireinject

package main

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kindredkeeper/keeper/core"
	"github.com/kindredkeeper/keeper/x/character"
	"github.com/kindredkeeper/keeper/x/feed"
	"github.com/kindredkeeper/keeper/x/transaction"
	"github.com/kindredkeeper/keeper/x/util"
)

var feedServiceProvider = wire.NewSet(feed.NewService)
var characterServiceProvider = wire.NewSet(character.NewService, character.NewRepository, feedServiceProvider)
var transactionServiceProvider = wire.NewSet(transaction.NewService, transaction.NewRepository, characterServiceProvider)

func SetupCharacterService(db *gorm.DB, rdb *redis.Client, mc *memcache.Client) core.CharacterService {
	wire.Build(characterServiceProvider)
	return nil
}

func SetupTransactionService(db *gorm.DB, rdb *redis.Client, mc *memcache.Client) core.TransactionService {
	wire.Build(transactionServiceProvider)
	return nil
}

func SetupCharacterHandler(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, config util.Config) character.Handler {
	wire.Build(character.NewHandler, characterServiceProvider)
	return nil
}

func SetupTransactionHandler(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, config util.Config) transaction.Handler {
	wire.Build(transaction.NewHandler, transactionServiceProvider)
	return nil
}

func SetupFeedHandler(rdb *redis.Client) feed.Handler {
	wire.Build(feed.NewHandler, feedServiceProvider)
	return nil
}
