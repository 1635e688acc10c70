package storage

// 存储默认配置值
const (
	// defaultBackend 默认使用进程内存（bigcache），重启后不保留
	defaultBackend = BackendMemory

	// defaultKeyPrefix 所有持久化键的公共前缀
	defaultKeyPrefix = "connector:"

	// === 内存后端 ===

	// defaultMemoryShards bigcache 分片数（必须为2的幂）
	defaultMemoryShards = 16

	// defaultMemoryMaxSizeMB bigcache 容量上限(MB)；连接器只保存少量小值
	defaultMemoryMaxSizeMB = 8

	// === Badger 后端 ===

	// defaultBadgerPath 相对数据目录的路径
	defaultBadgerPath = "connector-badger"

	// defaultBadgerSyncWrites 每次写入同步刷盘
	defaultBadgerSyncWrites = true

	// === Redis 后端 ===

	defaultRedisAddr = "127.0.0.1:6379"
	defaultRedisDB   = 0
)
