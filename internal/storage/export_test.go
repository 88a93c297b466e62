package storage

var (
	BuildMySQLDSN    = buildMySQLDSN
	BuildPostgresDSN = buildPostgresDSN
	MongoURI         = mongoURI
)

func (db *DB) Rebind(q string) string { return db.rebind(q) }

func NewTestDB(dialect Dialect) *DB { return &DB{dialect: dialect} }
