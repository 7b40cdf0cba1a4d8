package field

import (
	"fmt"
	"strings"
)

// Identifiable is implemented by hydrated model instances so a
// ForeignKeyField can encode a related instance as its row id without
// importing the hydrator package (which would create an import cycle).
type Identifiable interface {
	RowID() int64
}

// ForeignKeyField owns a column storing the referenced row's id. DDL
// appends the FOREIGN KEY clause with the configured ON DELETE/ON UPDATE
// actions.
type ForeignKeyField struct {
	base
	ref      string
	onDelete string
	onUpdate string
}

// NewForeignKey declares a many-to-one link to the model named ref.
func NewForeignKey(ref, onDelete, onUpdate string, opts ...Option) *ForeignKeyField {
	return &ForeignKeyField{base: newBase(opts), ref: ref, onDelete: onDelete, onUpdate: onUpdate}
}

// Ref returns the registered name of the referenced model.
func (f *ForeignKeyField) Ref() string { return f.ref }

// OnDelete returns the configured ON DELETE action.
func (f *ForeignKeyField) OnDelete() string { return f.onDelete }

// OnUpdate returns the configured ON UPDATE action.
func (f *ForeignKeyField) OnUpdate() string { return f.onUpdate }

// RefTable is the referenced model's table name (<ref>s, lowercased).
func (f *ForeignKeyField) RefTable() string {
	return strings.ToLower(f.ref) + "s"
}

func (f *ForeignKeyField) DDL(name string) string {
	ddl := f.ddl(name, "int", f.ToSQL)
	return fmt.Sprintf("%s, FOREIGN KEY (%s) REFERENCES %s (id) ON DELETE %s ON UPDATE %s",
		ddl, name, f.RefTable(), f.onDelete, f.onUpdate)
}

func (f *ForeignKeyField) ToSQL(v any) (string, error) {
	if v == nil {
		if f.null {
			return "NULL", nil
		}
		return "", fmt.Errorf("field: foreign key field is not nullable")
	}
	switch id := v.(type) {
	case int64:
		return fmt.Sprintf("%d", id), nil
	case int:
		return fmt.Sprintf("%d", id), nil
	case Identifiable:
		return fmt.Sprintf("%d", id.RowID()), nil
	default:
		return "", fmt.Errorf("field: foreign key field got unsupported value %v (%T)", v, v)
	}
}

func (f *ForeignKeyField) FromSQL(v any) (any, error) { return toInt64(v) }

// ManyToManyField owns no column on either parent table. It instead owns
// a junction table named "<owner>_<ref>" with columns "<owner>_id" and
// "<ref>_id", both foreign keys, plus a UNIQUE(owner_id, ref_id)
// constraint. Owner is filled in by the registry at model registration
// time, since the declaring model doesn't know its own registered name
// until then.
type ManyToManyField struct {
	base
	owner    string
	ref      string
	onDelete string
	onUpdate string
}

// NewManyToMany declares a many-to-many link to the model named ref.
func NewManyToMany(ref, onDelete, onUpdate string, opts ...Option) *ManyToManyField {
	return &ManyToManyField{base: newBase(opts), ref: ref, onDelete: onDelete, onUpdate: onUpdate}
}

// Ref returns the registered name of the referenced model.
func (f *ManyToManyField) Ref() string { return f.ref }

// Owner returns the registered name of the declaring model.
func (f *ManyToManyField) Owner() string { return f.owner }

// SetOwner is called once by the registry when this field's declaring
// model is registered.
func (f *ManyToManyField) SetOwner(owner string) { f.owner = owner }

// OwnerColumn is the junction table's column pointing at the owning
// model's row.
func (f *ManyToManyField) OwnerColumn() string { return strings.ToLower(f.owner) + "_id" }

// RefColumn is the junction table's column pointing at the referenced
// model's row.
func (f *ManyToManyField) RefColumn() string { return strings.ToLower(f.ref) + "_id" }

// RefTable is the referenced model's table name.
func (f *ManyToManyField) RefTable() string { return strings.ToLower(f.ref) + "s" }

// JunctionTable is the auxiliary table's name.
func (f *ManyToManyField) JunctionTable() string {
	return strings.ToLower(f.owner) + "_" + strings.ToLower(f.ref)
}

// JunctionDDL renders the CREATE TABLE statement for the junction table.
func (f *ManyToManyField) JunctionDDL() string {
	a, b := f.OwnerColumn(), f.RefColumn()
	ownerTable := strings.ToLower(f.owner) + "s"
	refTable := strings.ToLower(f.ref) + "s"
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s int NOT NULL, %s int NOT NULL, "+
			"FOREIGN KEY (%s) REFERENCES %s (id) ON DELETE %s ON UPDATE %s, "+
			"FOREIGN KEY (%s) REFERENCES %s (id) ON DELETE %s ON UPDATE %s, "+
			"UNIQUE (%s, %s))",
		f.JunctionTable(), a, b,
		a, ownerTable, f.onDelete, f.onUpdate,
		b, refTable, f.onDelete, f.onUpdate,
		a, b,
	)
}

// DDL returns the empty string: a many-to-many field contributes no
// column to either parent table.
func (f *ManyToManyField) DDL(string) string { return "" }

// InsertSQL renders the junction-row INSERT linking ownerID to refID.
func (f *ManyToManyField) InsertSQL(ownerID, refID int64) string {
	return fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%d, %d)",
		f.JunctionTable(), f.OwnerColumn(), f.RefColumn(), ownerID, refID)
}

// DeleteSQL renders the junction-row DELETE unlinking ownerID from refID.
func (f *ManyToManyField) DeleteSQL(ownerID, refID int64) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = %d AND %s = %d",
		f.JunctionTable(), f.OwnerColumn(), ownerID, f.RefColumn(), refID)
}

// SelectRefIDsSQL renders the SELECT of every referent id linked to
// ownerID, for hydrating a many-to-many accessor.
func (f *ManyToManyField) SelectRefIDsSQL(ownerID int64) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %d",
		f.RefColumn(), f.JunctionTable(), f.OwnerColumn(), ownerID)
}

func (f *ManyToManyField) ToSQL(any) (string, error) {
	return "", fmt.Errorf("field: many-to-many field has no scalar SQL representation")
}

func (f *ManyToManyField) FromSQL(any) (any, error) {
	return nil, fmt.Errorf("field: many-to-many field has no scalar SQL representation")
}
