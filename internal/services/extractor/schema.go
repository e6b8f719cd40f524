package extractor

import (
	"reflect"
	"strings"
	"sync"

	"github.com/ternarybob/aucsheet/internal/models"
	"google.golang.org/genai"
)

var (
	schemaOnce sync.Once
	schema     *genai.Schema
)

// OutputSchema returns the structured-output schema for auction data,
// generated by reflection over the AuctionData struct. The json tags
// name the properties and the validate tags supply required fields and
// enum memberships, so the schema sent to the model and the validation
// applied to its response always agree.
func OutputSchema() *genai.Schema {
	schemaOnce.Do(func() {
		schema = schemaForStruct(reflect.TypeOf(models.AuctionData{}))
	})
	return schema
}

func schemaForStruct(t reflect.Type) *genai.Schema {
	s := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			embedded := schemaForStruct(field.Type)
			for name, prop := range embedded.Properties {
				s.Properties[name] = prop
			}
			s.Required = append(s.Required, embedded.Required...)
			continue
		}

		name := jsonName(field)
		if name == "" {
			continue
		}

		prop := schemaForField(field)
		if prop == nil {
			continue
		}
		s.Properties[name] = prop

		if hasValidateRule(field, "required") {
			s.Required = append(s.Required, name)
		}
	}

	return s
}

func schemaForField(field reflect.StructField) *genai.Schema {
	t := field.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var prop *genai.Schema
	switch t.Kind() {
	case reflect.String:
		prop = &genai.Schema{Type: genai.TypeString}
		if values := oneofValues(field); len(values) > 0 {
			prop.Enum = values
		}
	case reflect.Int, reflect.Int32, reflect.Int64:
		prop = &genai.Schema{Type: genai.TypeInteger}
	case reflect.Float32, reflect.Float64:
		prop = &genai.Schema{Type: genai.TypeNumber}
	case reflect.Bool:
		prop = &genai.Schema{Type: genai.TypeBoolean}
	default:
		return nil
	}
	return prop
}

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	name := strings.Split(tag, ",")[0]
	if name == "" {
		return field.Name
	}
	return name
}

func hasValidateRule(field reflect.StructField, rule string) bool {
	for _, part := range strings.Split(field.Tag.Get("validate"), ",") {
		if part == rule {
			return true
		}
	}
	return false
}

func oneofValues(field reflect.StructField) []string {
	for _, part := range strings.Split(field.Tag.Get("validate"), ",") {
		if strings.HasPrefix(part, "oneof=") {
			return strings.Fields(strings.TrimPrefix(part, "oneof="))
		}
	}
	return nil
}
