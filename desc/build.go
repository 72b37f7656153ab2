package desc

import (
	"sort"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protodyn/protodyn/desc/internal"
)

// Pool assembly runs in two passes. The first pass walks every file and
// registers the full name of each message, enum, extension, and service
// without looking at any cross references, so declaration order and
// file order never matter. The second pass resolves every type-name
// reference, field shape, oneof membership, and default value against
// the completed name table. Any failure aborts the whole build.

func (p *DescriptorPool) registerFile(fileIdx int) error {
	fd := p.files[fileIdx].proto
	pkg := fd.GetPackage()
	for _, md := range fd.GetMessageType() {
		idx, err := p.registerMessage(fileIdx, -1, pkg, md)
		if err != nil {
			return err
		}
		p.files[fileIdx].messages = append(p.files[fileIdx].messages, idx)
	}
	for _, ed := range fd.GetEnumType() {
		idx, err := p.registerEnum(fileIdx, -1, pkg, ed)
		if err != nil {
			return err
		}
		p.files[fileIdx].enums = append(p.files[fileIdx].enums, idx)
	}
	for _, xd := range fd.GetExtension() {
		idx, err := p.registerExtension(fileIdx, -1, pkg, xd)
		if err != nil {
			return err
		}
		p.files[fileIdx].extensions = append(p.files[fileIdx].extensions, idx)
	}
	for _, sd := range fd.GetService() {
		fullName := internal.FullName(pkg, sd.GetName())
		idx := len(p.services)
		p.services = append(p.services, serviceInner{proto: sd, fullName: fullName, file: fileIdx})
		if err := p.types.addName(fullName, typeID{serviceType, idx}); err != nil {
			return err
		}
		p.files[fileIdx].services = append(p.files[fileIdx].services, idx)
	}
	return nil
}

func (p *DescriptorPool) registerMessage(fileIdx, parent int, namespace string, md *descriptorpb.DescriptorProto) (int, error) {
	fullName := internal.FullName(namespace, md.GetName())
	idx := len(p.types.messages)
	p.types.messages = append(p.types.messages, messageInner{
		proto:    md,
		fullName: fullName,
		file:     fileIdx,
		parent:   parent,
	})
	if err := p.types.addName(fullName, typeID{messageType, idx}); err != nil {
		return 0, err
	}
	for _, nested := range md.GetNestedType() {
		child, err := p.registerMessage(fileIdx, idx, fullName, nested)
		if err != nil {
			return 0, err
		}
		p.types.messages[idx].nestedMessages = append(p.types.messages[idx].nestedMessages, child)
	}
	for _, nested := range md.GetEnumType() {
		child, err := p.registerEnum(fileIdx, idx, fullName, nested)
		if err != nil {
			return 0, err
		}
		p.types.messages[idx].nestedEnums = append(p.types.messages[idx].nestedEnums, child)
	}
	for _, nested := range md.GetExtension() {
		child, err := p.registerExtension(fileIdx, idx, fullName, nested)
		if err != nil {
			return 0, err
		}
		p.types.messages[idx].nestedExtensions = append(p.types.messages[idx].nestedExtensions, child)
	}
	return idx, nil
}

func (p *DescriptorPool) registerEnum(fileIdx, parent int, namespace string, ed *descriptorpb.EnumDescriptorProto) (int, error) {
	fullName := internal.FullName(namespace, ed.GetName())
	idx := len(p.types.enums)
	p.types.enums = append(p.types.enums, enumInner{
		proto:    ed,
		fullName: fullName,
		file:     fileIdx,
		parent:   parent,
	})
	if err := p.types.addName(fullName, typeID{enumType, idx}); err != nil {
		return 0, err
	}
	return idx, nil
}

func (p *DescriptorPool) registerExtension(fileIdx, parent int, namespace string, xd *descriptorpb.FieldDescriptorProto) (int, error) {
	fullName := internal.FullName(namespace, xd.GetName())
	idx := len(p.types.extensions)
	p.types.extensions = append(p.types.extensions, extensionInner{
		field:    fieldInner{proto: xd, fullName: fullName},
		file:     fileIdx,
		parent:   parent,
		jsonName: "[" + fullName + "]",
	})
	if err := p.types.addName(fullName, typeID{extensionType, idx}); err != nil {
		return 0, err
	}
	return idx, nil
}

func (p *DescriptorPool) resolveMessage(msgIdx int) error {
	mi := &p.types.messages[msgIdx]
	proto3 := p.files[mi.file].proto3()
	scope := mi.fullName

	for _, od := range mi.proto.GetOneofDecl() {
		mi.oneofs = append(mi.oneofs, oneofInner{proto: od})
	}

	fields := make([]fieldInner, 0, len(mi.proto.GetField()))
	for _, fdp := range mi.proto.GetField() {
		fi, err := p.buildField(scope, proto3, fdp)
		if err != nil {
			return err
		}
		if fdp.OneofIndex != nil {
			oi := int(fdp.GetOneofIndex())
			if oi < 0 || oi >= len(mi.oneofs) {
				return invalidDescriptorError(fi.fullName, "oneof index %d out of range", oi)
			}
			fi.oneof = oi
		}
		fields = append(fields, fi)
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].number < fields[j].number })
	mi.fields = fields
	mi.fieldsByName = make(map[string]int, len(fields))
	for i := range fields {
		f := &fields[i]
		if _, dup := mi.fieldsByName[f.proto.GetName()]; dup {
			return invalidDescriptorError(f.fullName, "field name declared more than once")
		}
		mi.fieldsByName[f.proto.GetName()] = i
		if i > 0 && fields[i-1].number == f.number {
			return invalidDescriptorError(f.fullName, "field number %d declared more than once", f.number)
		}
		if f.oneof >= 0 {
			mi.oneofs[f.oneof].fields = append(mi.oneofs[f.oneof].fields, i)
		}
	}

	if mi.isMapEntry() {
		return p.validateMapEntry(mi)
	}
	return nil
}

// validateMapEntry enforces the synthetic map entry shape: exactly a
// key field numbered 1 and a value field numbered 2, both singular,
// with a key kind the map syntax allows.
func (p *DescriptorPool) validateMapEntry(mi *messageInner) error {
	if len(mi.fields) != 2 ||
		mi.fields[0].number != internal.MapEntryKeyNumber ||
		mi.fields[1].number != internal.MapEntryValueNumber {
		return invalidDescriptorError(mi.fullName, "map entry must have exactly a key field 1 and a value field 2")
	}
	for i := range mi.fields {
		if mi.fields[i].cardinality == CardinalityRepeated {
			return invalidDescriptorError(mi.fields[i].fullName, "map entry field may not be repeated")
		}
	}
	switch mi.fields[0].kind {
	case KindInt32, KindInt64, KindUint32, KindUint64,
		KindSint32, KindSint64, KindFixed32, KindFixed64,
		KindSfixed32, KindSfixed64, KindBool, KindString:
	default:
		return invalidDescriptorError(mi.fields[0].fullName, "%v is not a valid map key kind", mi.fields[0].kind)
	}
	return nil
}

func (p *DescriptorPool) buildField(scope string, proto3 bool, fdp *descriptorpb.FieldDescriptorProto) (fieldInner, error) {
	fi := fieldInner{
		proto:    fdp,
		number:   fdp.GetNumber(),
		fullName: internal.FullName(scope, fdp.GetName()),
		oneof:    -1,
		ref:      -1,
	}
	if fi.number < 1 || fi.number > internal.MaxTag {
		return fi, invalidDescriptorError(fi.fullName, "field number %d out of range", fi.number)
	}
	if fdp.JsonName != nil {
		fi.jsonName = fdp.GetJsonName()
	} else {
		fi.jsonName = internal.JSONName(fdp.GetName())
	}

	switch fdp.GetLabel() {
	case descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		fi.cardinality = CardinalityRepeated
	case descriptorpb.FieldDescriptorProto_LABEL_REQUIRED:
		fi.cardinality = CardinalityRequired
	default:
		fi.cardinality = CardinalityOptional
	}

	if err := p.resolveFieldType(scope, &fi); err != nil {
		return fi, err
	}

	if fi.kind == KindMessage && fi.cardinality == CardinalityRepeated &&
		p.types.messages[fi.ref].isMapEntry() {
		fi.isMap = true
	}

	if fi.cardinality == CardinalityRepeated && fi.kind.IsPackable() {
		if opts := fdp.GetOptions(); opts != nil && opts.Packed != nil {
			fi.packed = opts.GetPacked()
		} else {
			fi.packed = proto3
		}
	}

	fi.presence = fi.cardinality != CardinalityRepeated &&
		(fi.kind == KindMessage || !proto3 || fdp.OneofIndex != nil)

	if fdp.DefaultValue != nil {
		dv, err := p.parseDefaultValue(&fi, fdp.GetDefaultValue())
		if err != nil {
			return fi, err
		}
		fi.defaultValue = dv
	}
	return fi, nil
}

// resolveFieldType fills in the field's kind and, for message and enum
// fields, the arena index of the referenced type. Descriptors produced
// by some compilers omit the type tag when a type name is present, in
// which case the kind is inferred from whatever the name resolves to.
func (p *DescriptorPool) resolveFieldType(scope string, fi *fieldInner) error {
	fdp := fi.proto
	if fdp.Type == nil && fdp.GetTypeName() != "" {
		id, ok := p.types.resolveTypeName(scope, fdp.GetTypeName())
		if !ok {
			return typeNotFoundError(fi.fullName, fdp.GetTypeName())
		}
		switch id.kind {
		case messageType:
			fi.kind, fi.ref = KindMessage, id.index
		case enumType:
			fi.kind, fi.ref = KindEnum, id.index
		default:
			return notAMessageError(fi.fullName, fdp.GetTypeName())
		}
		return nil
	}

	kind, ok := kindFromProtoType(fdp.GetType())
	if !ok {
		return invalidDescriptorError(fi.fullName, "unknown field type %v", fdp.GetType())
	}
	fi.kind = kind
	fi.isGroup = fdp.GetType() == descriptorpb.FieldDescriptorProto_TYPE_GROUP

	switch kind {
	case KindMessage:
		id, ok := p.types.resolveTypeName(scope, fdp.GetTypeName())
		if !ok {
			return typeNotFoundError(fi.fullName, fdp.GetTypeName())
		}
		if id.kind != messageType {
			return notAMessageError(fi.fullName, fdp.GetTypeName())
		}
		fi.ref = id.index
	case KindEnum:
		id, ok := p.types.resolveTypeName(scope, fdp.GetTypeName())
		if !ok {
			return typeNotFoundError(fi.fullName, fdp.GetTypeName())
		}
		if id.kind != enumType {
			return notAnEnumError(fi.fullName, fdp.GetTypeName())
		}
		fi.ref = id.index
	}
	return nil
}

func (p *DescriptorPool) resolveEnum(enumIdx int) error {
	ei := &p.types.enums[enumIdx]
	values := ei.proto.GetValue()
	if len(values) == 0 {
		return invalidDescriptorError(ei.fullName, "enum must declare at least one value")
	}
	parentScope := internal.Namespace(ei.fullName)
	ei.valueFullNames = make([]string, len(values))
	ei.valuesByNumber = make([]int, len(values))
	for i, vd := range values {
		ei.valueFullNames[i] = internal.FullName(parentScope, vd.GetName())
		ei.valuesByNumber[i] = i
	}
	sort.SliceStable(ei.valuesByNumber, func(i, j int) bool {
		return values[ei.valuesByNumber[i]].GetNumber() < values[ei.valuesByNumber[j]].GetNumber()
	})
	ei.defaultIndex = 0
	for i, vd := range values {
		if vd.GetNumber() == 0 {
			ei.defaultIndex = i
			break
		}
	}
	return nil
}

func (p *DescriptorPool) resolveExtension(extIdx int) error {
	xi := &p.types.extensions[extIdx]
	var scope string
	if xi.parent >= 0 {
		scope = p.types.messages[xi.parent].fullName
	} else {
		scope = p.files[xi.file].proto.GetPackage()
	}

	fdp := xi.field.proto
	fi, err := p.buildField(scope, false, fdp)
	if err != nil {
		return err
	}
	fi.fullName = xi.field.fullName
	// singular extensions always track presence
	fi.presence = fi.cardinality != CardinalityRepeated
	xi.field = fi

	id, ok := p.types.resolveTypeName(scope, fdp.GetExtendee())
	if !ok {
		return typeNotFoundError(xi.field.fullName, fdp.GetExtendee())
	}
	if id.kind != messageType {
		return notAMessageError(xi.field.fullName, fdp.GetExtendee())
	}
	xi.extendee = id.index

	extendee := &p.types.messages[id.index]
	inRange := false
	for _, er := range extendee.proto.GetExtensionRange() {
		if fi.number >= er.GetStart() && fi.number < er.GetEnd() {
			inRange = true
			break
		}
	}
	if !inRange {
		return invalidDescriptorError(xi.field.fullName,
			"extension number %d is not in an extension range of %s", fi.number, extendee.fullName)
	}
	extendee.extendedBy = append(extendee.extendedBy, extIdx)
	return nil
}

func (p *DescriptorPool) resolveService(svcIdx int) error {
	si := &p.services[svcIdx]
	scope := internal.Namespace(si.fullName)
	for _, md := range si.proto.GetMethod() {
		methodName := internal.FullName(si.fullName, md.GetName())
		input, ok := p.types.resolveTypeName(scope, md.GetInputType())
		if !ok {
			return typeNotFoundError(methodName, md.GetInputType())
		}
		if input.kind != messageType {
			return notAMessageError(methodName, md.GetInputType())
		}
		output, ok := p.types.resolveTypeName(scope, md.GetOutputType())
		if !ok {
			return typeNotFoundError(methodName, md.GetOutputType())
		}
		if output.kind != messageType {
			return notAMessageError(methodName, md.GetOutputType())
		}
		si.methods = append(si.methods, methodInner{proto: md, input: input.index, output: output.index})
	}
	return nil
}
