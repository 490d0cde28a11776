package core

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/huangsam/schemadiff/schema"
)

// Change messages emitted by the comparator.
const (
	msgConstraintChanged  = "property constraint changed"
	msgKeywordAdded       = "added schema keyword"
	msgKeywordRemoved     = "removed schema keyword"
	msgDescriptionAdded   = "added description field"
	msgDescriptionRemoved = "removed description field"
)

// structuralKeywords are keys whose appearance or disappearance is breaking.
var structuralKeywords = map[string]struct{}{
	"type": {}, "properties": {}, "required": {}, "additionalProperties": {},
	"items": {}, "$id": {}, "$ref": {}, "allOf": {}, "anyOf": {}, "oneOf": {},
	"not": {}, "if": {}, "then": {}, "else": {}, "minItems": {}, "maxItems": {},
	"minimum": {}, "maximum": {}, "pattern": {}, "@context": {},
}

// descriptiveFields are keys whose appearance or disappearance is patch level.
var descriptiveFields = map[string]struct{}{
	"description": {}, "title": {}, "$comment": {}, "examples": {}, "meta:version": {},
}

// IsStructuralKeyword reports whether key is compared as a schema keyword.
func IsStructuralKeyword(key string) bool {
	_, ok := structuralKeywords[key]
	return ok
}

// IsDescriptiveField reports whether key is compared as documentation.
func IsDescriptiveField(key string) bool {
	_, ok := descriptiveFields[key]
	return ok
}

// CompareSchemas walks two decoded JSON documents in lock-step and returns
// every difference found, bucketed by kind. Object keys are visited in sorted
// order so the output is reproducible.
//
// Both arguments must be values encoding/json could have produced (maps with
// string keys, slices, strings, numbers, booleans or nil). Anything else is a
// caller bug and panics.
func CompareSchemas(oldDoc, newDoc any) schema.Diff {
	mustBeJSON(oldDoc, "old")
	mustBeJSON(newDoc, "new")

	d := &differ{diff: schema.NewDiff()}
	d.compare(oldDoc, newDoc, "")
	return d.diff
}

// differ accumulates records for a single CompareSchemas call.
type differ struct {
	diff schema.Diff
}

func (d *differ) compare(oldNode, newNode any, path string) {
	oldMap, oldIsMap := oldNode.(map[string]any)
	newMap, newIsMap := newNode.(map[string]any)
	if !oldIsMap || !newIsMap {
		d.compareValues(oldNode, newNode, path)
		return
	}

	for _, key := range unionKeys(oldMap, newMap) {
		keyPath := key
		if path != "" {
			keyPath = path + "/" + key
		}

		oldVal, inOld := oldMap[key]
		newVal, inNew := newMap[key]
		switch {
		case !inOld:
			d.keyAdded(key, keyPath, newVal)
		case !inNew:
			d.keyRemoved(key, keyPath, oldVal)
		default:
			d.compareMember(key, keyPath, oldVal, newVal)
		}
	}
}

func (d *differ) keyAdded(key, path string, value any) {
	switch {
	case IsStructuralKeyword(key):
		d.diff.Add(schema.BreakingChange, schema.ChangeRecord{Path: path, Change: msgKeywordAdded})
	case IsDescriptiveField(key):
		d.diff.Add(schema.DescriptionChange, schema.ChangeRecord{Path: path, Change: msgDescriptionAdded}.WithNew(value))
	}
}

func (d *differ) keyRemoved(key, path string, value any) {
	switch {
	case IsStructuralKeyword(key):
		d.diff.Add(schema.BreakingChange, schema.ChangeRecord{Path: path, Change: msgKeywordRemoved})
	case IsDescriptiveField(key):
		d.diff.Add(schema.DescriptionChange, schema.ChangeRecord{Path: path, Change: msgDescriptionRemoved}.WithOld(value))
	}
}

// compareMember dispatches on the shape of a key present on both sides.
func (d *differ) compareMember(key, path string, oldVal, newVal any) {
	if oldMap, ok := oldVal.(map[string]any); ok {
		if newMap, ok := newVal.(map[string]any); ok {
			if key == "properties" {
				d.compareProperties(oldMap, newMap, path)
			} else {
				d.compare(oldMap, newMap, path)
			}
			return
		}
	}
	if oldArr, ok := oldVal.([]any); ok {
		if newArr, ok := newVal.([]any); ok {
			if key == "required" {
				d.compareRequired(oldArr, newArr, path)
			} else {
				d.compareArrays(oldArr, newArr, path)
			}
			return
		}
	}
	d.compareValues(oldVal, newVal, path)
}

// compareValues handles leaves and mismatched shapes. Text changes in title or
// description land here too and are breaking like any other value change.
func (d *differ) compareValues(oldVal, newVal any, path string) {
	if jsonEqual(oldVal, newVal) {
		return
	}
	rec := schema.ChangeRecord{Path: path}.WithOld(oldVal).WithNew(newVal)
	if isBool(oldVal) || isBool(newVal) {
		rec.Change = msgConstraintChanged
	}
	d.diff.Add(schema.BreakingChange, rec)
}

func (d *differ) compareProperties(oldProps, newProps map[string]any, path string) {
	var added, removed, shared []string
	for _, name := range unionKeys(oldProps, newProps) {
		_, inOld := oldProps[name]
		_, inNew := newProps[name]
		switch {
		case !inOld:
			added = append(added, name)
		case !inNew:
			removed = append(removed, name)
		default:
			shared = append(shared, name)
		}
	}

	if len(added) > 0 {
		d.diff.Add(schema.NonBreakingChange, schema.ChangeRecord{
			Path:   path,
			Change: "new properties added: " + formatNameList(added),
		})
	}
	if len(removed) > 0 {
		d.diff.Add(schema.BreakingChange, schema.ChangeRecord{
			Path:   path,
			Change: "properties removed: " + formatNameList(removed),
		})
	}
	for _, name := range shared {
		d.compare(oldProps[name], newProps[name], path+"/"+name)
	}
}

// compareRequired treats both arrays as sets. Newly required names are
// breaking, dropped ones only relax validation.
func (d *differ) compareRequired(oldReq, newReq []any, path string) {
	oldSet := requiredSet(oldReq)
	newSet := requiredSet(newReq)

	var added, removed []requiredName
	for key, name := range newSet {
		if _, ok := oldSet[key]; !ok {
			added = append(added, name)
		}
	}
	for key, name := range oldSet {
		if _, ok := newSet[key]; !ok {
			removed = append(removed, name)
		}
	}

	if len(added) > 0 {
		d.diff.Add(schema.BreakingChange, schema.ChangeRecord{
			Path:   path,
			Change: "new required fields: " + formatRequired(added),
		})
	}
	if len(removed) > 0 {
		d.diff.Add(schema.NonBreakingChange, schema.ChangeRecord{
			Path:   path,
			Change: "removed required fields: " + formatRequired(removed),
		})
	}
}

// compareArrays is positional. Reordered elements show up as mismatches.
func (d *differ) compareArrays(oldArr, newArr []any, path string) {
	if len(oldArr) != len(newArr) {
		d.diff.Add(schema.BreakingChange, schema.ChangeRecord{
			Path:   path,
			Change: fmt.Sprintf("array length changed from %d to %d", len(oldArr), len(newArr)),
		})
		return
	}

	for i := range oldArr {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		oldMap, oldIsMap := oldArr[i].(map[string]any)
		newMap, newIsMap := newArr[i].(map[string]any)
		if oldIsMap && newIsMap {
			d.compare(oldMap, newMap, itemPath)
			continue
		}
		if !jsonEqual(oldArr[i], newArr[i]) {
			d.diff.Add(schema.BreakingChange, schema.ChangeRecord{Path: itemPath}.WithOld(oldArr[i]).WithNew(newArr[i]))
		}
	}
}

func unionKeys(a, b map[string]any) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// requiredName is one entry of a required array, keyed by its JSON encoding.
type requiredName struct {
	sortKey string
	display string
}

func requiredSet(values []any) map[string]requiredName {
	set := make(map[string]requiredName, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			set["s:"+s] = requiredName{sortKey: s, display: quoteName(s)}
			continue
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			panic(fmt.Sprintf("core: required entry is not JSON encodable: %v", err))
		}
		set["j:"+string(encoded)] = requiredName{sortKey: string(encoded), display: string(encoded)}
	}
	return set
}

func formatRequired(names []requiredName) string {
	slices.SortFunc(names, func(a, b requiredName) int { return strings.Compare(a.sortKey, b.sortKey) })
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n.display
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// formatNameList renders sorted names the way the reports have always shown
// them, e.g. ['a', 'b'].
func formatNameList(names []string) string {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = quoteName(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// quoteName quotes s with single quotes unless it contains a single quote and no
// double quote. Control and non-printable runes are escaped as \x, \u or \U.
func quoteName(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r >= 0x80 && !unicode.IsPrint(r):
			switch {
			case r <= 0xff:
				fmt.Fprintf(&b, `\x%02x`, r)
			case r <= 0xffff:
				fmt.Fprintf(&b, `\u%04x`, r)
			default:
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

// jsonEqual compares decoded JSON values. Numbers compare by exact value, so
// 1 and 1.0 are equal and integers beyond float64 precision stay distinct.
func jsonEqual(a, b any) bool {
	if an, ok := toNumber(a); ok {
		bn, ok := toNumber(b)
		return ok && numbersEqual(a, b, an, bn)
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, ok := bv[k]
			if !ok || !jsonEqual(v, other) {
				return false
			}
		}
		return true
	}
	return false
}

// numbersEqual compares two numbers exactly as rationals. Values without a
// finite rational form (NaN, infinities) fall back to af == bf.
func numbersEqual(a, b any, af, bf float64) bool {
	ar, br := exactNumber(a), exactNumber(b)
	if ar == nil || br == nil {
		return af == bf
	}
	return ar.Cmp(br) == 0
}

// exactNumber returns the exact value of a number. Integer text in a
// json.Number is parsed without loss; any other number text is read as a
// float64 first, the way JSON decoders treat non-integers.
func exactNumber(v any) *big.Rat {
	switch n := v.(type) {
	case json.Number:
		if i, ok := new(big.Int).SetString(string(n), 10); ok {
			return new(big.Rat).SetInt(i)
		}
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return nil
		}
		return new(big.Rat).SetFloat64(f)
	case float64:
		return new(big.Rat).SetFloat64(n)
	case float32:
		return new(big.Rat).SetFloat64(float64(n))
	case int:
		return new(big.Rat).SetInt64(int64(n))
	case int8:
		return new(big.Rat).SetInt64(int64(n))
	case int16:
		return new(big.Rat).SetInt64(int64(n))
	case int32:
		return new(big.Rat).SetInt64(int64(n))
	case int64:
		return new(big.Rat).SetInt64(n)
	case uint:
		return new(big.Rat).SetUint64(uint64(n))
	case uint8:
		return new(big.Rat).SetUint64(uint64(n))
	case uint16:
		return new(big.Rat).SetUint64(uint64(n))
	case uint32:
		return new(big.Rat).SetUint64(uint64(n))
	case uint64:
		return new(big.Rat).SetUint64(n)
	}
	return nil
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	}
	return 0, false
}

// mustBeJSON panics when v holds a value outside the JSON data model.
func mustBeJSON(v any, side string) {
	if err := checkJSONValue(v, ""); err != nil {
		panic(fmt.Sprintf("core: %s document is not a JSON value: %v", side, err))
	}
}

func checkJSONValue(v any, path string) error {
	if _, ok := toNumber(v); ok {
		return nil
	}
	switch tv := v.(type) {
	case nil, bool, string:
		return nil
	case []any:
		for i, item := range tv {
			if err := checkJSONValue(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for k, item := range tv {
			if err := checkJSONValue(item, path+"/"+k); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported type %T at %q", v, path)
}
