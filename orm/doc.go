// Package orm is the public entry point: declare models with Declare and
// the field constructors, connect with Connect, then query through
// DB.Objects or the DB.Filter/Get/Create/BulkCreate shortcuts. Everything
// here is a thin re-export over internal/orm/* — see that tree for the
// query planner, field codecs and connection machinery.
package orm
