package database

import (
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqRedisOpt connection options shared by the asynq client and server.
func AsynqRedisOpt(addr, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: addr, Password: password, DB: db}
}

// NewAsynqServer worker server that only consumes the given queue.
func NewAsynqServer(opt asynq.RedisClientOpt, queue string, concurrency int, errorHandler asynq.ErrorHandler, log *zap.Logger) *asynq.Server {
	return asynq.NewServer(opt, asynq.Config{
		Concurrency:  concurrency,
		Queues:       map[string]int{queue: 1},
		ErrorHandler: errorHandler,
		Logger:       log.Sugar(),
	})
}
