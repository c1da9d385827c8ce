package zoo

import "strings"

//wirejson:dispatch AnimalRegistry key=kind declare
type Animal interface {
	TypeName() string
}

//wirejson:adapter ColorAdapter
type Color int

const (
	Red Color = iota
	Blue
)

//wirejson:fromwire ColorAdapter
func ColorFromWire(s string) Color {
	if strings.EqualFold(s, "blue") {
		return Blue
	}
	return Red
}

//wirejson:towire ColorAdapter
func ColorToWire(c Color) string {
	if c == Blue {
		return "blue"
	}
	return "red"
}

//wirejson:opaque
type Stamp string

// Pet is a strict type.
//
//wirejson:type strict postprocess
type Pet struct {
	Name   string   `wire:"name,alt=pet_name|petName"`
	Age    *int32   `wire:"age,exact,optional"`
	Color  Color    `json:"color,omitempty"`
	Tags   []string `wire:"tags"`
	Level  int      `wire:"level,default=3"`
	hidden string   `wire:"hidden"`
	Skip   string   `wire:"-"`
	Plain  string

	//wirejson:parse ${value} = strings.ToUpper(${reader}.Text())
	//wirejson:serialize ${writer}.WriteFieldName("${wire_name}"); ${writer}.WriteString(${value})
	Nick string `wire:"nick"`
}

//wirejson:type noserializer
//wirejson:variant Animal dog
type Dog struct {
	Breed string `wire:"breed,required"`
}

// Untagged types are ignored.
type Ignored struct {
	A int `wire:"a"`
}
