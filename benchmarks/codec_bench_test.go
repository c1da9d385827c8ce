package benchmarks_test

import (
	"bytes"
	"encoding/json"
	"strconv"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wirejson "github.com/reoring/wirejson"
	"github.com/reoring/wirejson/examples/zoo"
)

// --- Fixtures ---

func smallPet() *zoo.Pet {
	age := int32(4)
	return &zoo.Pet{
		Name:   "Rex",
		Age:    &age,
		Weight: 12.5,
		Tags:   []string{"good", "loud"},
		Scores: map[string]int64{"agility": 7, "obedience": 9},
		Owner:  &zoo.Person{Name: "Ann"},
		Color:  zoo.Blue,
		Nick:   "rexy",
		Level:  3,
	}
}

func largeShelter(n int) *zoo.Shelter {
	s := &zoo.Shelter{Name: "Home", Residents: make(map[string]*zoo.Pet, n)}
	for i := 0; i < n; i++ {
		s.Residents["pet"+strconv.Itoa(i)] = smallPet()
		s.Animals = append(s.Animals, &zoo.Dog{Name: "dog" + strconv.Itoa(i), Good: i%2 == 0})
	}
	return s
}

// mustMarshal wraps a marshal call: mustMarshal(b)(json.Marshal(v)).
func mustMarshal(tb testing.TB) func([]byte, error) []byte {
	return func(data []byte, err error) []byte {
		tb.Helper()
		if err != nil {
			tb.Fatalf("marshal: %v", err)
		}
		return data
	}
}

func TestFixtures(t *testing.T) {
	pet, err := zoo.UnmarshalPet(mustMarshal(t)(zoo.MarshalPet(smallPet())))
	require.NoError(t, err)
	assert.Equal(t, smallPet(), pet)

	shelter, err := zoo.UnmarshalShelter(mustMarshal(t)(zoo.MarshalShelter(largeShelter(3))))
	require.NoError(t, err)
	assert.Equal(t, largeShelter(3), shelter)

	var viaStd zoo.Pet
	require.NoError(t, json.Unmarshal(mustMarshal(t)(json.Marshal(smallPet())), &viaStd))
	var viaGoJSON zoo.Pet
	require.NoError(t, gojson.Unmarshal(mustMarshal(t)(gojson.Marshal(smallPet())), &viaGoJSON))
	assert.Equal(t, "Rex", viaStd.Name)
	assert.Equal(t, "Rex", viaGoJSON.Name)
}

// --- Generated codecs ---

func Benchmark_Generated_Pet_Marshal(b *testing.B) {
	v := smallPet()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := zoo.MarshalPet(v); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Generated_Pet_Unmarshal(b *testing.B) {
	data := mustMarshal(b)(zoo.MarshalPet(smallPet()))
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := zoo.UnmarshalPet(data); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Generated_Shelter_Decode_Drivers(b *testing.B) {
	data := mustMarshal(b)(zoo.MarshalShelter(largeShelter(500)))
	drivers := []wirejson.JSONDriver{wirejson.GoJSONDriver(), wirejson.StdJSONDriver()}
	for _, d := range drivers {
		b.Run(d.Name(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				r := wirejson.NewStreamReader(bytes.NewReader(data), wirejson.WithDriver(d))
				if _, err := wirejson.Decode(r, zoo.ParseShelter); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// --- Reflection baselines ---

func Benchmark_EncodingJSON_Pet_Marshal(b *testing.B) {
	v := smallPet()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := json.Marshal(v); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_EncodingJSON_Pet_Unmarshal(b *testing.B) {
	data := mustMarshal(b)(json.Marshal(smallPet()))
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v zoo.Pet
		if err := json.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_GoJSON_Pet_Marshal(b *testing.B) {
	v := smallPet()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gojson.Marshal(v); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_GoJSON_Pet_Unmarshal(b *testing.B) {
	data := mustMarshal(b)(gojson.Marshal(smallPet()))
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v zoo.Pet
		if err := gojson.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}
