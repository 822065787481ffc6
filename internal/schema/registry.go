// Package schema is the single source of truth for entity shapes. Each
// entity struct is declared once, carrying json, gorm and validate tags,
// and the registry derives the two views the rest of the service consumes:
// the persistence view (the model list for AutoMigrate plus a JSON-name to
// column mapping) and the validation view (a configured validator that
// reports every violation using API field names).
//
// Registration happens at startup and fails loudly: a patch struct whose
// fields do not mirror its entity, or a sort field that resolves to no
// column, is a programming error and panics before the server accepts
// traffic.
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	gormschema "gorm.io/gorm/schema"
)

type entity struct {
	goType   reflect.Type
	model    any
	fields   map[string]Field
	order    []string
	sortable map[string]string
}

// Registry holds every registered entity and the shared validator.
type Registry struct {
	validate *validator.Validate
	cache    *sync.Map
	entities map[reflect.Type]*entity
	models   []any
}

// NewRegistry builds an empty registry. The validator reports field names
// from json tags so validation errors match the wire format.
func NewRegistry() *Registry {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Registry{
		validate: v,
		cache:    &sync.Map{},
		entities: make(map[reflect.Type]*entity),
	}
}

// RegisterOption customizes entity registration.
type RegisterOption func(*Registry, *entity)

// WithPatch asserts that the given patch struct mirrors the entity: every
// patch field must be a pointer to the exact type of the entity field with
// the same JSON name, carrying the same validation rules (presence
// modifiers aside). This keeps partial updates from drifting away from the
// canonical declaration.
func WithPatch(patch any) RegisterOption {
	return func(_ *Registry, e *entity) {
		pt := reflect.TypeOf(patch)
		if pt.Kind() == reflect.Pointer {
			pt = pt.Elem()
		}
		for i := 0; i < pt.NumField(); i++ {
			sf := pt.Field(i)
			name := jsonName(sf)
			if name == "" {
				continue
			}
			f, ok := e.fields[name]
			if !ok {
				panic(fmt.Sprintf("schema: patch %s field %q has no counterpart on %s", pt.Name(), name, e.goType.Name()))
			}
			if sf.Type.Kind() != reflect.Pointer {
				panic(fmt.Sprintf("schema: patch %s field %q must be a pointer", pt.Name(), name))
			}
			ef, _ := e.goType.FieldByName(f.GoName)
			if sf.Type.Elem() != ef.Type {
				panic(fmt.Sprintf("schema: patch %s field %q is *%s, entity has %s", pt.Name(), name, sf.Type.Elem(), ef.Type))
			}
			if er, pr := ruleTail(ef), ruleTail(sf); er != pr {
				panic(fmt.Sprintf("schema: patch %s field %q rules %q diverge from entity rules %q", pt.Name(), name, pr, er))
			}
		}
	}
}

// ruleTail strips the presence modifiers from a validate tag, leaving only
// the constraints that must match between an entity and its patch struct.
func ruleTail(sf reflect.StructField) string {
	var rules []string
	for _, part := range strings.Split(sf.Tag.Get("validate"), ",") {
		switch part {
		case "", "required", "omitempty", "omitnil":
		default:
			rules = append(rules, part)
		}
	}
	return strings.Join(rules, ",")
}

// WithSortFields whitelists the JSON fields list endpoints may sort by.
func WithSortFields(names ...string) RegisterOption {
	return func(_ *Registry, e *entity) {
		for _, name := range names {
			f, ok := e.fields[name]
			if !ok {
				panic(fmt.Sprintf("schema: sort field %q does not exist on %s", name, e.goType.Name()))
			}
			e.sortable[name] = f.Column
		}
	}
}

// WithServerManaged marks fields that only the server writes, excluding
// them from bulk import assignment.
func WithServerManaged(names ...string) RegisterOption {
	return func(_ *Registry, e *entity) {
		for _, name := range names {
			f, ok := e.fields[name]
			if !ok {
				panic(fmt.Sprintf("schema: server-managed field %q does not exist on %s", name, e.goType.Name()))
			}
			f.Assignable = false
			e.fields[name] = f
		}
	}
}

// MustRegister adds an entity to the registry, deriving its field set from
// the struct declaration. It panics on any inconsistency.
func (r *Registry) MustRegister(model any, opts ...RegisterOption) {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if _, dup := r.entities[t]; dup {
		panic(fmt.Sprintf("schema: entity %s registered twice", t.Name()))
	}

	parsed, err := gormschema.Parse(model, r.cache, gormschema.NamingStrategy{})
	if err != nil {
		panic(fmt.Sprintf("schema: cannot parse entity %s: %v", t.Name(), err))
	}

	e := &entity{
		goType:   t,
		model:    reflect.New(t).Interface(),
		fields:   make(map[string]Field),
		sortable: make(map[string]string),
	}

	for _, pf := range parsed.Fields {
		name := jsonName(pf.StructField)
		if name == "" {
			continue
		}
		kind, ok := kindOf(pf.StructField.Type)
		if !ok {
			// Associations and other composite fields are not part of the
			// flat API contract.
			continue
		}
		auto := pf.AutoCreateTime != 0 || pf.AutoUpdateTime != 0
		e.fields[name] = Field{
			JSONName:   name,
			GoName:     pf.Name,
			Column:     pf.DBName,
			Kind:       kind,
			Required:   hasRule(pf.StructField, "required"),
			Assignable: !pf.PrimaryKey && !auto && kind != KindTime,
		}
		e.order = append(e.order, name)
	}

	for _, opt := range opts {
		opt(r, e)
	}

	r.entities[t] = e
	r.models = append(r.models, e.model)
}

// Models returns the registered models in registration order, ready to be
// handed to AutoMigrate.
func (r *Registry) Models() []any {
	out := make([]any, len(r.models))
	copy(out, r.models)
	return out
}

// Validate checks v against its validation tags. It returns nil when the
// payload is clean, and a *ValidationError listing every violated field
// otherwise.
func (r *Registry) Validate(v any) error {
	err := r.validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	ve := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return ve
}

// SortColumn resolves a sort key such as "price" or "price_desc" into a
// whitelisted column and direction. ok is false for anything not
// registered as sortable, which keeps user input out of ORDER BY clauses.
func (r *Registry) SortColumn(model any, key string) (column string, desc bool, ok bool) {
	e := r.entityFor(model)
	if e == nil {
		return "", false, false
	}
	if strings.HasSuffix(key, "_desc") {
		desc = true
		key = strings.TrimSuffix(key, "_desc")
	}
	column, ok = e.sortable[key]
	return column, desc, ok
}

// Fields returns the API-visible fields of the entity in declaration order.
func (r *Registry) Fields(model any) []Field {
	e := r.entityFor(model)
	if e == nil {
		return nil
	}
	out := make([]Field, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.fields[name])
	}
	return out
}

// FieldByJSON looks a field up by its JSON name.
func (r *Registry) FieldByJSON(model any, name string) (Field, bool) {
	e := r.entityFor(model)
	if e == nil {
		return Field{}, false
	}
	f, ok := e.fields[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// RequiredFields returns the JSON names a bulk import cannot do without.
func (r *Registry) RequiredFields(model any) []string {
	e := r.entityFor(model)
	if e == nil {
		return nil
	}
	var out []string
	for _, name := range e.order {
		if f := e.fields[name]; f.Required && f.Assignable {
			out = append(out, name)
		}
	}
	return out
}

// PatchColumns translates a patch struct into column updates for the
// entity's table. Only non-nil patch fields appear in the result, keyed by
// the column name the registry derived from the canonical declaration.
func (r *Registry) PatchColumns(model, patch any) map[string]any {
	e := r.entityFor(model)
	if e == nil {
		return nil
	}
	pv := reflect.ValueOf(patch)
	for pv.Kind() == reflect.Pointer {
		pv = pv.Elem()
	}
	pt := pv.Type()

	cols := make(map[string]any)
	for i := 0; i < pt.NumField(); i++ {
		name := jsonName(pt.Field(i))
		if name == "" {
			continue
		}
		f, ok := e.fields[name]
		if !ok {
			continue
		}
		fv := pv.Field(i)
		if fv.Kind() != reflect.Pointer || fv.IsNil() {
			continue
		}
		cols[f.Column] = fv.Elem().Interface()
	}
	return cols
}

// Assign coerces a raw cell value per the field's kind and writes it onto
// the entity pointed to by entityPtr. The returned error is suitable for a
// per-row import report.
func (r *Registry) Assign(entityPtr any, name, raw string) error {
	rv := reflect.ValueOf(entityPtr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("schema: Assign needs a non-nil entity pointer")
	}
	e := r.entities[rv.Type().Elem()]
	if e == nil {
		return fmt.Errorf("schema: entity %s is not registered", rv.Type().Elem().Name())
	}
	f, ok := e.fields[name]
	if !ok {
		return fmt.Errorf("unknown field")
	}
	if !f.Assignable {
		return fmt.Errorf("cannot be set")
	}
	value, err := f.coerce(raw)
	if err != nil {
		return err
	}
	f.assign(rv, value)
	return nil
}

func (r *Registry) entityFor(model any) *entity {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return r.entities[t]
}

func jsonName(sf reflect.StructField) string {
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" && sf.IsExported() && !sf.Anonymous {
		name = sf.Name
	}
	return name
}

func hasRule(sf reflect.StructField, rule string) bool {
	for _, part := range strings.Split(sf.Tag.Get("validate"), ",") {
		if part == rule {
			return true
		}
	}
	return false
}
