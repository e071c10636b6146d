package expr

import (
	"testing"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/session"
)

func newTestSession(data map[string]session.Data) *session.Session {
	s := session.New("1234", "home", "en", "233200000000")
	for k, v := range data {
		s.SetData(k, v)
	}
	return s
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name string
		data map[string]session.Data
		text string
		want string
	}{
		{
			name: "simple string",
			data: map[string]session.Data{"name": session.NewStr("John")},
			text: "Hello {{name}}",
			want: "Hello John",
		},
		{
			name: "nested field",
			data: map[string]session.Data{
				"account": session.NewDict(map[string]session.Data{
					"name": session.NewStr("John"),
				}),
			},
			text: "Hello {{account.name}}",
			want: "Hello John",
		},
		{
			name: "deep nested field",
			data: map[string]session.Data{
				"account": session.NewDict(map[string]session.Data{
					"person": session.NewDict(map[string]session.Data{
						"name": session.NewStr("John"),
					}),
				}),
			},
			text: "Hello {{account.person.name}}",
			want: "Hello John",
		},
		{
			name: "self referential dict lookup",
			data: map[string]session.Data{
				"balance": session.NewDict(map[string]session.Data{
					"balance": session.NewStr("150.00"),
				}),
			},
			text: "Your balance is {{balance}}",
			want: "Your balance is 150.00",
		},
		{
			name: "string list joins with comma",
			data: map[string]session.Data{
				"account": session.NewDict(map[string]session.Data{
					"plans": session.NewListStr([]string{"daily", "weekly"}),
				}),
			},
			text: "Plans: {{account.plans}}",
			want: "Plans: daily, weekly",
		},
		{
			name: "missing key kept verbatim",
			data: nil,
			text: "Hello {{name}}",
			want: "Hello {{name}}",
		},
		{
			name: "missing nested field kept verbatim",
			data: map[string]session.Data{
				"account": session.NewDict(map[string]session.Data{
					"name": session.NewStr("John"),
				}),
			},
			text: "Hello {{account.age}}",
			want: "Hello {{account.age}}",
		},
		{
			name: "field access on string kept verbatim",
			data: map[string]session.Data{"account": session.NewStr("John")},
			text: "Hello {{account.age}}",
			want: "Hello {{account.age}}",
		},
		{
			name: "multiple placeholders",
			data: map[string]session.Data{
				"name": session.NewStr("John"),
				"age":  session.NewStr("30"),
			},
			text: "{{name}} is {{age}}",
			want: "John is 30",
		},
	}

	e := NewEvaluator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(tt.data)
			if got := e.Interpolate(tt.text, s); got != tt.want {
				t.Errorf("Interpolate(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestEvaluateCondition(t *testing.T) {
	tests := []struct {
		name string
		data map[string]session.Data
		text string
		want bool
	}{
		{
			name: "equality true",
			data: map[string]session.Data{"name": session.NewStr("John")},
			text: "{{name == 'John'}}",
			want: true,
		},
		{
			name: "equality false",
			data: map[string]session.Data{"name": session.NewStr("Jane")},
			text: "{{name == 'John'}}",
			want: false,
		},
		{
			name: "nested equality",
			data: map[string]session.Data{
				"account": session.NewDict(map[string]session.Data{
					"age": session.NewStr("30"),
				}),
			},
			text: "{{account.age == '30'}}",
			want: true,
		},
		{
			name: "greater than",
			data: map[string]session.Data{"age": session.NewStr("30")},
			text: "{{age > '20'}}",
			want: true,
		},
		{
			name: "greater than nested",
			data: map[string]session.Data{
				"account": session.NewDict(map[string]session.Data{
					"age": session.NewStr("30"),
				}),
			},
			text: "{{account.age > '20'}}",
			want: true,
		},
		{
			name: "greater or equal",
			data: map[string]session.Data{"age": session.NewStr("30")},
			text: "{{age >= '30'}}",
			want: true,
		},
		{
			name: "less than",
			data: map[string]session.Data{"age": session.NewStr("30")},
			text: "{{age < '40'}}",
			want: true,
		},
		{
			name: "less or equal",
			data: map[string]session.Data{"age": session.NewStr("30")},
			text: "{{age <= '30'}}",
			want: true,
		},
		{
			name: "self referential dict lookup",
			data: map[string]session.Data{
				"status": session.NewDict(map[string]session.Data{
					"status": session.NewStr("active"),
				}),
			},
			text: "{{status == 'active'}}",
			want: true,
		},
		{
			name: "missing key is false",
			data: map[string]session.Data{"age": session.NewStr("30")},
			text: "{{name == 'John'}}",
			want: false,
		},
		{
			name: "field access on string is false",
			data: map[string]session.Data{"age": session.NewStr("30")},
			text: "{{age.name == 'John'}}",
			want: false,
		},
		{
			name: "dict leaf is not a scalar",
			data: map[string]session.Data{
				"age": session.NewDict(map[string]session.Data{
					"name": session.NewDict(map[string]session.Data{}),
				}),
			},
			text: "{{age.name == 'John'}}",
			want: false,
		},
		{
			name: "no expression at all",
			data: map[string]session.Data{"age": session.NewStr("30")},
			text: "just some text",
			want: false,
		},
		{
			name: "surrounding text is ignored",
			data: map[string]session.Data{"name": session.NewStr("John")},
			text: "Is John? {{name == 'John'}}",
			want: true,
		},
	}

	e := NewEvaluator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(tt.data)
			if got := e.EvaluateCondition(s, tt.text); got != tt.want {
				t.Errorf("EvaluateCondition(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
