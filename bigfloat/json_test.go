package bigfloat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSON(t *testing.T) {
	a := assert.New(t)
	data, err := json.Marshal(FromFloat64(-0.75, 4))
	a.NoError(err)
	a.Equal(`"-0.75"`, string(data))

	var s struct {
		Re Float `json:"re"`
		Im Float `json:"im"`
	}
	s.Im = Zero(8)
	err = json.Unmarshal([]byte(`{"re":"-0.743643887037158704752191506114774","im":0.125}`), &s)
	if !a.NoError(err) {
		return
	}
	a.Equal(MinLimbs, s.Re.Prec())
	a.Equal(8, s.Im.Prec())
	a.Equal(-0.7436438870371587, s.Re.Float64())
	a.Equal(0.125, s.Im.Float64())

	a.Error(json.Unmarshal([]byte(`{"re":"x"}`), &s))
	a.Error(json.Unmarshal([]byte(`{"re":""}`), &s))
}
