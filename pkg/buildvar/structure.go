package buildvar

import "fmt"

// structValue is a generic field-addressable structure. Field names are a
// convention between the binding site and the templates that read them; an
// unrecognized name yields absence, not an error.
type structValue struct {
	fields  map[string]Value
	typeTag string
}

// NewStruct returns a structure value with the given type tag and fields.
// The map is stored directly and must not be mutated afterwards.
func NewStruct(typeTag string, fields map[string]Value) Value {
	return structValue{fields: fields, typeTag: typeTag}
}

func (s structValue) AsString(variableName string, _ PathMapper) (string, error) {
	return "", errWrongKind(variableName, "string", s.kind())
}

func (s structValue) AsSequence(variableName string, _ PathMapper) ([]Value, error) {
	return nil, errWrongKind(variableName, "sequence", s.kind())
}

func (s structValue) Field(_, field string, _ InputMetadataProvider, _ PathMapper) (Value, error) {
	return s.fields[field], nil
}

func (s structValue) Truthy() bool { return true }

func (s structValue) kind() string { return fmt.Sprintf("structure (%s)", s.typeTag) }

// Conventional field names on library-to-link structures.
const (
	libraryNameField         = "name"
	libraryPathField         = "path"
	libraryTypeField         = "type"
	libraryWholeArchiveField = "is_whole_archive"
	libraryObjectFilesField  = "object_files"
)

const libraryToLinkKind = "structure (LibraryToLink)"

// libraryToLink is a specialized structure describing one library on a link
// command line. It computes its fields on demand instead of holding a field
// map, since a large link action carries millions of these.
type libraryToLink struct {
	libType      string
	name         string
	path         string
	wholeArchive bool
	objects      []Artifact
}

// ForDynamicLibrary returns a library-to-link structure for a dynamic
// library identified by name.
func ForDynamicLibrary(name string) Value {
	return libraryToLink{libType: "dynamic_library", name: name}
}

// ForVersionedDynamicLibrary returns a library-to-link structure for a
// versioned dynamic library, carrying both link name and on-disk path.
func ForVersionedDynamicLibrary(name, path string) Value {
	return libraryToLink{libType: "versioned_dynamic_library", name: name, path: path}
}

// ForInterfaceLibrary returns a library-to-link structure for an interface
// library.
func ForInterfaceLibrary(name string) Value {
	return libraryToLink{libType: "interface_library", name: name}
}

// ForStaticLibrary returns a library-to-link structure for a static
// library, optionally linked whole-archive.
func ForStaticLibrary(name string, wholeArchive bool) Value {
	return libraryToLink{libType: "static_library", name: name, wholeArchive: wholeArchive}
}

// ForObjectFile returns a library-to-link structure for a single object
// file.
func ForObjectFile(name string, wholeArchive bool) Value {
	return libraryToLink{libType: "object_file", name: name, wholeArchive: wholeArchive}
}

// ForObjectFileGroup returns a library-to-link structure for a group of
// object files. Tree artifacts among objects are expanded into their leaf
// members through the metadata provider when the object_files field is
// read.
func ForObjectFileGroup(objects []Artifact, wholeArchive bool) Value {
	return libraryToLink{libType: "object_file_group", wholeArchive: wholeArchive, objects: objects}
}

func (l libraryToLink) AsString(variableName string, _ PathMapper) (string, error) {
	return "", errWrongKind(variableName, "string", libraryToLinkKind)
}

func (l libraryToLink) AsSequence(variableName string, _ PathMapper) ([]Value, error) {
	return nil, errWrongKind(variableName, "sequence", libraryToLinkKind)
}

func (l libraryToLink) Field(_, field string, meta InputMetadataProvider, mapper PathMapper) (Value, error) {
	switch field {
	case libraryTypeField:
		return NewStringValue(l.libType), nil
	case libraryWholeArchiveField:
		return NewBooleanValue(l.wholeArchive), nil
	case libraryNameField:
		if l.name == "" {
			return nil, nil
		}
		return NewStringValue(mapper.apply(l.name)), nil
	case libraryPathField:
		if l.path == "" {
			return nil, nil
		}
		return NewStringValue(l.path), nil
	case libraryObjectFilesField:
		if l.objects == nil {
			return nil, nil
		}
		return l.expandObjectFiles(meta, mapper), nil
	default:
		return nil, nil
	}
}

// expandObjectFiles flattens the object group into mapped leaf paths. A
// tree artifact with no available metadata contributes no leaves.
func (l libraryToLink) expandObjectFiles(meta InputMetadataProvider, mapper PathMapper) Value {
	expanded := make([]string, 0, len(l.objects))
	for _, obj := range l.objects {
		if obj.Tree && meta != nil {
			for _, child := range meta.TreeChildren(obj) {
				expanded = append(expanded, mapper.mapArtifact(child))
			}
			continue
		}
		expanded = append(expanded, mapper.mapArtifact(obj))
	}
	return NewStringSequence(expanded)
}

func (l libraryToLink) Truthy() bool { return true }

func (l libraryToLink) kind() string { return libraryToLinkKind }
