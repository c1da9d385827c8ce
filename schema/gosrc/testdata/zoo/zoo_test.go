package zoo

//wirejson:type
type FromTest struct{}
