package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Referential: a name or index that does not resolve.
	RefInfo               Code = 1000
	RefUnknownBlock       Code = 1001
	RefUnknownPhiLabel    Code = 1002
	RefConstantOutOfRange Code = 1003
	RefUnknownEntryPoint  Code = 1004
	RefUnknownTableOwner  Code = 1005
	RefUnknownGlobal      Code = 1006
	RefUnknownFunction    Code = 1007

	// Structural: the graph resolves but breaks an invariant.
	StrInfo              Code = 2000
	StrPhiArity          Code = 2001
	StrPhiInDegree       Code = 2002
	StrEdgeMismatch      Code = 2003
	StrTerminatorNotLast Code = 2004
	StrGlobalSize        Code = 2005
	StrInvalidType       Code = 2006
	StrOperandArity      Code = 2007
	StrMissingTarget     Code = 2008
	StrTableUnstable     Code = 2009
	StrDuplicateName     Code = 2010
	StrInvalidCast       Code = 2011
	StrMissingOperand    Code = 2012
	StrArgumentsCount    Code = 2013
	StrConditionOperands Code = 2014
	StrPointeeMismatch   Code = 2015
	StrOperandType       Code = 2016
	StrPhiDuplicateLabel Code = 2017

	// Warnings: legal IR that is probably not what the producer meant.
	WarnInfo             Code = 3000
	WarnUnreachableBlock Code = 3001
	WarnNonNFCName       Code = 3002
	WarnFallsOffEnd      Code = 3003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		RefInfo:               "Reference information",
		RefUnknownBlock:       "Jump target is not a block of the graph",
		RefUnknownPhiLabel:    "Phi label is not a block of the graph",
		RefConstantOutOfRange: "Constant index out of range",
		RefUnknownEntryPoint:  "Entry point names no function",
		RefUnknownTableOwner:  "Dispatch table owner is not a structure",
		RefUnknownGlobal:      "Address macro names no global",
		RefUnknownFunction:    "Virtual table slot names no function",
		StrInfo:               "Structure information",
		StrPhiArity:           "Phi labels and operands differ in length",
		StrPhiInDegree:        "Phi arity differs from block in-degree",
		StrEdgeMismatch:       "Edge relation disagrees with terminators",
		StrTerminatorNotLast:  "Terminator before the end of a block",
		StrGlobalSize:         "Global size disagrees with its values",
		StrInvalidType:        "Malformed type",
		StrOperandArity:       "Parallel operand lists differ in length",
		StrMissingTarget:      "Instruction result has no target register",
		StrTableUnstable:      "Dispatch table order changed between builds",
		StrDuplicateName:      "Duplicate name",
		StrInvalidCast:        "Cast kind does not fit its types",
		StrMissingOperand:     "Missing operand",
		StrArgumentsCount:     "Arguments count exceeds fields",
		StrConditionOperands:  "Condition operand count mismatch",
		StrPointeeMismatch:    "Access type differs from pointee type",
		StrOperandType:        "Operand type differs from the type it is used at",
		StrPhiDuplicateLabel:  "Phi names a predecessor twice",
		WarnInfo:              "Warning information",
		WarnUnreachableBlock:  "Unreachable block",
		WarnNonNFCName:        "Name is not in Unicode NFC form",
		WarnFallsOffEnd:       "Control falls off the end of a function",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("REF%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("STR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("WRN%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
