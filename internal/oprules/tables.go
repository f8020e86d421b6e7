package oprules

import "spice/internal/types"

var assignRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // double = double -> double
	{types.TyInt, types.TyInt, types.TyInt, false},          // int = int -> int
	{types.TyShort, types.TyShort, types.TyShort, false},    // short = short -> short
	{types.TyLong, types.TyLong, types.TyLong, false},       // long = long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},       // byte = byte -> byte
	{types.TyChar, types.TyChar, types.TyChar, false},       // char = char -> char
	{types.TyString, types.TyString, types.TyString, false}, // string = string -> string
	{types.TyBool, types.TyBool, types.TyBool, false},       // bool = bool -> bool
}

var plusEqualRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // double += double -> double
	{types.TyInt, types.TyInt, types.TyInt, false},          // int += int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},        // int += short -> int
	{types.TyInt, types.TyLong, types.TyInt, false},         // int += long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},      // short += int -> short
	{types.TyShort, types.TyShort, types.TyShort, false},    // short += short -> short
	{types.TyShort, types.TyLong, types.TyShort, false},     // short += long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},        // long += int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},      // long += short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},       // long += long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},       // byte += byte -> byte
	{types.TyChar, types.TyChar, types.TyChar, false},       // char += char -> char
}

var minusEqualRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // double -= double -> double
	{types.TyInt, types.TyInt, types.TyInt, false},          // int -= int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},        // int -= short -> int
	{types.TyInt, types.TyLong, types.TyInt, false},         // int -= long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},      // short -= int -> short
	{types.TyShort, types.TyShort, types.TyShort, false},    // short -= short -> short
	{types.TyShort, types.TyLong, types.TyShort, false},     // short -= long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},        // long -= int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},      // long -= short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},       // long -= long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},       // byte -= byte -> byte
	{types.TyChar, types.TyChar, types.TyChar, false},       // char -= char -> char
}

var mulEqualRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // double *= double -> double
	{types.TyInt, types.TyInt, types.TyInt, false},          // int *= int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},        // int *= short -> int
	{types.TyInt, types.TyLong, types.TyInt, false},         // int *= long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},      // short *= int -> short
	{types.TyShort, types.TyShort, types.TyShort, false},    // short *= short -> short
	{types.TyShort, types.TyLong, types.TyShort, false},     // short *= long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},        // long *= int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},      // long *= short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},       // long *= long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},       // byte *= byte -> byte
}

var divEqualRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // double /= double -> double
	{types.TyInt, types.TyInt, types.TyInt, false},          // int /= int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},        // int /= short -> int
	{types.TyInt, types.TyLong, types.TyInt, false},         // int /= long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},      // short /= int -> short
	{types.TyShort, types.TyShort, types.TyShort, false},    // short /= short -> short
	{types.TyShort, types.TyLong, types.TyShort, false},     // short /= long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},        // long /= int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},      // long /= short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},       // long /= long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},       // byte /= byte -> byte
}

var remEqualRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // double %= double -> double
	{types.TyInt, types.TyInt, types.TyInt, false},          // int %= int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},        // int %= short -> int
	{types.TyInt, types.TyLong, types.TyInt, false},         // int %= long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},      // short %= int -> short
	{types.TyShort, types.TyShort, types.TyShort, false},    // short %= short -> short
	{types.TyShort, types.TyLong, types.TyShort, false},     // short %= long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},        // long %= int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},      // long %= short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},       // long %= long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},       // byte %= byte -> byte
}

var shlEqualRules = []BinaryRule{
	{types.TyInt, types.TyInt, types.TyInt, false},       // int <<= int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},     // int <<= short -> int
	{types.TyInt, types.TyLong, types.TyLong, false},     // int <<= long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},   // short <<= int -> short
	{types.TyShort, types.TyShort, types.TyShort, false}, // short <<= short -> short
	{types.TyShort, types.TyLong, types.TyLong, false},   // short <<= long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},     // long <<= int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},   // long <<= short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},    // long <<= long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},    // byte <<= byte -> byte
}

var shrEqualRules = []BinaryRule{
	{types.TyInt, types.TyInt, types.TyInt, false},       // int >>= int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},     // int >>= short -> int
	{types.TyInt, types.TyLong, types.TyLong, false},     // int >>= long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},   // short >>= int -> short
	{types.TyShort, types.TyShort, types.TyShort, false}, // short >>= short -> short
	{types.TyShort, types.TyLong, types.TyLong, false},   // short >>= long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},     // long >>= int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},   // long >>= short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},    // long >>= long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},    // byte >>= byte -> byte
}

var andEqualRules = []BinaryRule{
	{types.TyInt, types.TyInt, types.TyInt, false},       // int &= int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},     // int &= short -> int
	{types.TyInt, types.TyLong, types.TyLong, false},     // int &= long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},   // short &= int -> short
	{types.TyShort, types.TyShort, types.TyShort, false}, // short &= short -> short
	{types.TyShort, types.TyLong, types.TyLong, false},   // short &= long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},     // long &= int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},   // long &= short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},    // long &= long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},    // byte &= byte -> byte
}

var orEqualRules = []BinaryRule{
	{types.TyInt, types.TyInt, types.TyInt, false},       // int |= int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},     // int |= short -> int
	{types.TyInt, types.TyLong, types.TyLong, false},     // int |= long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},   // short |= int -> short
	{types.TyShort, types.TyShort, types.TyShort, false}, // short |= short -> short
	{types.TyShort, types.TyLong, types.TyLong, false},   // short |= long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},     // long |= int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},   // long |= short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},    // long |= long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},    // byte |= byte -> byte
}

var xorEqualRules = []BinaryRule{
	{types.TyInt, types.TyInt, types.TyInt, false},       // int ^= int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},     // int ^= short -> int
	{types.TyInt, types.TyLong, types.TyLong, false},     // int ^= long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},   // short ^= int -> short
	{types.TyShort, types.TyShort, types.TyShort, false}, // short ^= short -> short
	{types.TyShort, types.TyLong, types.TyLong, false},   // short ^= long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},     // long ^= int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},   // long ^= short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},    // long ^= long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},    // byte ^= byte -> byte
	{types.TyChar, types.TyChar, types.TyChar, false},    // char ^= char -> char
}

var logicalAndRules = []BinaryRule{
	{types.TyBool, types.TyBool, types.TyBool, false}, // bool && bool -> bool
}

var logicalOrRules = []BinaryRule{
	{types.TyBool, types.TyBool, types.TyBool, false}, // bool || bool -> bool
}

var bitwiseAndRules = []BinaryRule{
	{types.TyInt, types.TyInt, types.TyInt, false},       // int & int -> int
	{types.TyShort, types.TyShort, types.TyShort, false}, // short & short -> short
	{types.TyLong, types.TyLong, types.TyLong, false},    // long & long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},    // byte & byte -> byte
}

var bitwiseOrRules = []BinaryRule{
	{types.TyInt, types.TyInt, types.TyInt, false},       // int | int -> int
	{types.TyShort, types.TyShort, types.TyShort, false}, // short | short -> short
	{types.TyLong, types.TyLong, types.TyLong, false},    // long | long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},    // byte | byte -> byte
}

var bitwiseXorRules = []BinaryRule{
	{types.TyInt, types.TyInt, types.TyInt, false},       // int ^ int -> int
	{types.TyShort, types.TyShort, types.TyShort, false}, // short ^ short -> short
	{types.TyLong, types.TyLong, types.TyLong, false},    // long ^ long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},    // byte ^ byte -> byte
}

var equalRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyBool, false}, // double == double -> bool
	{types.TyDouble, types.TyInt, types.TyBool, false},    // double == int -> bool
	{types.TyDouble, types.TyShort, types.TyBool, false},  // double == short -> bool
	{types.TyDouble, types.TyLong, types.TyBool, false},   // double == long -> bool
	{types.TyInt, types.TyDouble, types.TyBool, false},    // int == double -> bool
	{types.TyInt, types.TyInt, types.TyBool, false},       // int == int -> bool
	{types.TyInt, types.TyShort, types.TyBool, false},     // int == short -> bool
	{types.TyInt, types.TyLong, types.TyBool, false},      // int == long -> bool
	{types.TyInt, types.TyChar, types.TyBool, false},      // int == char -> bool
	{types.TyShort, types.TyDouble, types.TyBool, false},  // short == double -> bool
	{types.TyShort, types.TyInt, types.TyBool, false},     // short == int -> bool
	{types.TyShort, types.TyShort, types.TyBool, false},   // short == short -> bool
	{types.TyShort, types.TyLong, types.TyBool, false},    // short == long -> bool
	{types.TyShort, types.TyChar, types.TyBool, false},    // short == char -> bool
	{types.TyLong, types.TyDouble, types.TyBool, false},   // long == double -> bool
	{types.TyLong, types.TyInt, types.TyBool, false},      // long == int -> bool
	{types.TyLong, types.TyShort, types.TyBool, false},    // long == short -> bool
	{types.TyLong, types.TyLong, types.TyBool, false},     // long == long -> bool
	{types.TyLong, types.TyChar, types.TyBool, false},     // long == char -> bool
	{types.TyByte, types.TyByte, types.TyBool, false},     // byte == byte -> bool
	{types.TyChar, types.TyInt, types.TyBool, false},      // char == int -> bool
	{types.TyChar, types.TyShort, types.TyBool, false},    // char == short -> bool
	{types.TyChar, types.TyLong, types.TyBool, false},     // char == long -> bool
	{types.TyChar, types.TyChar, types.TyBool, false},     // char == char -> bool
	{types.TyString, types.TyString, types.TyBool, false}, // string == string -> bool
	{types.TyBool, types.TyBool, types.TyBool, false},     // bool == bool -> bool
}

var notEqualRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyBool, false}, // double != double -> bool
	{types.TyDouble, types.TyInt, types.TyBool, false},    // double != int -> bool
	{types.TyDouble, types.TyShort, types.TyBool, false},  // double != short -> bool
	{types.TyDouble, types.TyLong, types.TyBool, false},   // double != long -> bool
	{types.TyInt, types.TyDouble, types.TyBool, false},    // int != double -> bool
	{types.TyInt, types.TyInt, types.TyBool, false},       // int != int -> bool
	{types.TyInt, types.TyShort, types.TyBool, false},     // int != short -> bool
	{types.TyInt, types.TyLong, types.TyBool, false},      // int != long -> bool
	{types.TyInt, types.TyChar, types.TyBool, false},      // int != char -> bool
	{types.TyShort, types.TyDouble, types.TyBool, false},  // short != double -> bool
	{types.TyShort, types.TyInt, types.TyBool, false},     // short != int -> bool
	{types.TyShort, types.TyShort, types.TyBool, false},   // short != short -> bool
	{types.TyShort, types.TyLong, types.TyBool, false},    // short != long -> bool
	{types.TyShort, types.TyChar, types.TyBool, false},    // short != char -> bool
	{types.TyLong, types.TyDouble, types.TyBool, false},   // long != double -> bool
	{types.TyLong, types.TyInt, types.TyBool, false},      // long != int -> bool
	{types.TyLong, types.TyShort, types.TyBool, false},    // long != short -> bool
	{types.TyLong, types.TyLong, types.TyBool, false},     // long != long -> bool
	{types.TyLong, types.TyChar, types.TyBool, false},     // long != char -> bool
	{types.TyByte, types.TyByte, types.TyBool, false},     // byte != byte -> bool
	{types.TyChar, types.TyInt, types.TyBool, false},      // char != int -> bool
	{types.TyChar, types.TyShort, types.TyBool, false},    // char != short -> bool
	{types.TyChar, types.TyLong, types.TyBool, false},     // char != long -> bool
	{types.TyChar, types.TyChar, types.TyBool, false},     // char != char -> bool
	{types.TyString, types.TyString, types.TyBool, false}, // string != string -> bool
	{types.TyBool, types.TyBool, types.TyBool, false},     // bool != bool -> bool
}

var lessRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyBool, false}, // double < double -> bool
	{types.TyDouble, types.TyInt, types.TyBool, false},    // double < int -> bool
	{types.TyDouble, types.TyShort, types.TyBool, false},  // double < short -> bool
	{types.TyDouble, types.TyLong, types.TyBool, false},   // double < long -> bool
	{types.TyInt, types.TyDouble, types.TyBool, false},    // int < double -> bool
	{types.TyInt, types.TyInt, types.TyBool, false},       // int < int -> bool
	{types.TyInt, types.TyShort, types.TyBool, false},     // int < short -> bool
	{types.TyInt, types.TyLong, types.TyBool, false},      // int < long -> bool
	{types.TyShort, types.TyDouble, types.TyBool, false},  // short < double -> bool
	{types.TyShort, types.TyInt, types.TyBool, false},     // short < int -> bool
	{types.TyShort, types.TyShort, types.TyBool, false},   // short < short -> bool
	{types.TyShort, types.TyLong, types.TyBool, false},    // short < long -> bool
	{types.TyLong, types.TyDouble, types.TyBool, false},   // long < double -> bool
	{types.TyLong, types.TyInt, types.TyBool, false},      // long < int -> bool
	{types.TyLong, types.TyShort, types.TyBool, false},    // long < short -> bool
	{types.TyLong, types.TyLong, types.TyBool, false},     // long < long -> bool
	{types.TyByte, types.TyByte, types.TyBool, false},     // byte < byte -> bool
	{types.TyChar, types.TyChar, types.TyBool, false},     // char < char -> bool
}

var greaterRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyBool, false}, // double > double -> bool
	{types.TyDouble, types.TyInt, types.TyBool, false},    // double > int -> bool
	{types.TyDouble, types.TyShort, types.TyBool, false},  // double > short -> bool
	{types.TyDouble, types.TyLong, types.TyBool, false},   // double > long -> bool
	{types.TyInt, types.TyDouble, types.TyBool, false},    // int > double -> bool
	{types.TyInt, types.TyInt, types.TyBool, false},       // int > int -> bool
	{types.TyInt, types.TyShort, types.TyBool, false},     // int > short -> bool
	{types.TyInt, types.TyLong, types.TyBool, false},      // int > long -> bool
	{types.TyShort, types.TyDouble, types.TyBool, false},  // short > double -> bool
	{types.TyShort, types.TyInt, types.TyBool, false},     // short > int -> bool
	{types.TyShort, types.TyShort, types.TyBool, false},   // short > short -> bool
	{types.TyShort, types.TyLong, types.TyBool, false},    // short > long -> bool
	{types.TyLong, types.TyDouble, types.TyBool, false},   // long > double -> bool
	{types.TyLong, types.TyInt, types.TyBool, false},      // long > int -> bool
	{types.TyLong, types.TyShort, types.TyBool, false},    // long > short -> bool
	{types.TyLong, types.TyLong, types.TyBool, false},     // long > long -> bool
	{types.TyByte, types.TyByte, types.TyBool, false},     // byte > byte -> bool
	{types.TyChar, types.TyChar, types.TyBool, false},     // char > char -> bool
}

var lessEqualRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyBool, false}, // double <= double -> bool
	{types.TyDouble, types.TyInt, types.TyBool, false},    // double <= int -> bool
	{types.TyDouble, types.TyShort, types.TyBool, false},  // double <= short -> bool
	{types.TyDouble, types.TyLong, types.TyBool, false},   // double <= long -> bool
	{types.TyInt, types.TyDouble, types.TyBool, false},    // int <= double -> bool
	{types.TyInt, types.TyInt, types.TyBool, false},       // int <= int -> bool
	{types.TyInt, types.TyShort, types.TyBool, false},     // int <= short -> bool
	{types.TyInt, types.TyLong, types.TyBool, false},      // int <= long -> bool
	{types.TyShort, types.TyDouble, types.TyBool, false},  // short <= double -> bool
	{types.TyShort, types.TyInt, types.TyBool, false},     // short <= int -> bool
	{types.TyShort, types.TyShort, types.TyBool, false},   // short <= short -> bool
	{types.TyShort, types.TyLong, types.TyBool, false},    // short <= long -> bool
	{types.TyLong, types.TyDouble, types.TyBool, false},   // long <= double -> bool
	{types.TyLong, types.TyInt, types.TyBool, false},      // long <= int -> bool
	{types.TyLong, types.TyShort, types.TyBool, false},    // long <= short -> bool
	{types.TyLong, types.TyLong, types.TyBool, false},     // long <= long -> bool
	{types.TyByte, types.TyByte, types.TyBool, false},     // byte <= byte -> bool
	{types.TyChar, types.TyChar, types.TyBool, false},     // char <= char -> bool
}

var greaterEqualRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyBool, false}, // double >= double -> bool
	{types.TyDouble, types.TyInt, types.TyBool, false},    // double >= int -> bool
	{types.TyDouble, types.TyShort, types.TyBool, false},  // double >= short -> bool
	{types.TyDouble, types.TyLong, types.TyBool, false},   // double >= long -> bool
	{types.TyInt, types.TyDouble, types.TyBool, false},    // int >= double -> bool
	{types.TyInt, types.TyInt, types.TyBool, false},       // int >= int -> bool
	{types.TyInt, types.TyShort, types.TyBool, false},     // int >= short -> bool
	{types.TyInt, types.TyLong, types.TyBool, false},      // int >= long -> bool
	{types.TyShort, types.TyDouble, types.TyBool, false},  // short >= double -> bool
	{types.TyShort, types.TyInt, types.TyBool, false},     // short >= int -> bool
	{types.TyShort, types.TyShort, types.TyBool, false},   // short >= short -> bool
	{types.TyShort, types.TyLong, types.TyBool, false},    // short >= long -> bool
	{types.TyLong, types.TyDouble, types.TyBool, false},   // long >= double -> bool
	{types.TyLong, types.TyInt, types.TyBool, false},      // long >= int -> bool
	{types.TyLong, types.TyShort, types.TyBool, false},    // long >= short -> bool
	{types.TyLong, types.TyLong, types.TyBool, false},     // long >= long -> bool
	{types.TyByte, types.TyByte, types.TyBool, false},     // byte >= byte -> bool
	{types.TyChar, types.TyChar, types.TyBool, false},     // char >= char -> bool
}

var shiftLeftRules = []BinaryRule{
	{types.TyInt, types.TyInt, types.TyInt, false},       // int << int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},     // int << short -> int
	{types.TyInt, types.TyLong, types.TyInt, false},      // int << long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},   // short << int -> short
	{types.TyShort, types.TyShort, types.TyShort, false}, // short << short -> short
	{types.TyShort, types.TyLong, types.TyShort, false},  // short << long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},     // long << int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},   // long << short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},    // long << long -> long
	{types.TyByte, types.TyInt, types.TyByte, false},     // byte << int -> byte
	{types.TyByte, types.TyShort, types.TyByte, false},   // byte << short -> byte
	{types.TyByte, types.TyLong, types.TyByte, false},    // byte << long -> byte
	{types.TyByte, types.TyByte, types.TyByte, false},    // byte << byte -> byte
}

var shiftRightRules = []BinaryRule{
	{types.TyInt, types.TyInt, types.TyInt, false},       // int >> int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},     // int >> short -> int
	{types.TyInt, types.TyLong, types.TyInt, false},      // int >> long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},   // short >> int -> short
	{types.TyShort, types.TyShort, types.TyShort, false}, // short >> short -> short
	{types.TyShort, types.TyLong, types.TyShort, false},  // short >> long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},     // long >> int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},   // long >> short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},    // long >> long -> long
	{types.TyByte, types.TyInt, types.TyByte, false},     // byte >> int -> byte
	{types.TyByte, types.TyShort, types.TyByte, false},   // byte >> short -> byte
	{types.TyByte, types.TyLong, types.TyByte, false},    // byte >> long -> byte
	{types.TyByte, types.TyByte, types.TyByte, false},    // byte >> byte -> byte
}

var plusRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // double + double -> double
	{types.TyDouble, types.TyInt, types.TyDouble, false},    // double + int -> double
	{types.TyDouble, types.TyShort, types.TyDouble, false},  // double + short -> double
	{types.TyDouble, types.TyLong, types.TyDouble, false},   // double + long -> double
	{types.TyInt, types.TyDouble, types.TyDouble, false},    // int + double -> double
	{types.TyInt, types.TyInt, types.TyInt, false},          // int + int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},        // int + short -> int
	{types.TyInt, types.TyLong, types.TyLong, false},        // int + long -> long
	{types.TyShort, types.TyDouble, types.TyDouble, false},  // short + double -> double
	{types.TyShort, types.TyInt, types.TyInt, false},        // short + int -> int
	{types.TyShort, types.TyShort, types.TyShort, false},    // short + short -> short
	{types.TyShort, types.TyLong, types.TyLong, false},      // short + long -> long
	{types.TyLong, types.TyDouble, types.TyDouble, false},   // long + double -> double
	{types.TyLong, types.TyInt, types.TyLong, false},        // long + int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},      // long + short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},       // long + long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},       // byte + byte -> byte
}

var minusRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // double - double -> double
	{types.TyDouble, types.TyInt, types.TyDouble, false},    // double - int -> double
	{types.TyDouble, types.TyShort, types.TyDouble, false},  // double - short -> double
	{types.TyDouble, types.TyLong, types.TyDouble, false},   // double - long -> double
	{types.TyInt, types.TyDouble, types.TyDouble, false},    // int - double -> double
	{types.TyInt, types.TyInt, types.TyInt, false},          // int - int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},        // int - short -> int
	{types.TyInt, types.TyLong, types.TyLong, false},        // int - long -> long
	{types.TyShort, types.TyDouble, types.TyDouble, false},  // short - double -> double
	{types.TyShort, types.TyInt, types.TyInt, false},        // short - int -> int
	{types.TyShort, types.TyShort, types.TyShort, false},    // short - short -> short
	{types.TyShort, types.TyLong, types.TyLong, false},      // short - long -> long
	{types.TyLong, types.TyDouble, types.TyDouble, false},   // long - double -> double
	{types.TyLong, types.TyInt, types.TyLong, false},        // long - int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},      // long - short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},       // long - long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},       // byte - byte -> byte
}

var mulRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // double * double -> double
	{types.TyDouble, types.TyInt, types.TyDouble, false},    // double * int -> double
	{types.TyDouble, types.TyShort, types.TyDouble, false},  // double * short -> double
	{types.TyDouble, types.TyLong, types.TyDouble, false},   // double * long -> double
	{types.TyInt, types.TyDouble, types.TyDouble, false},    // int * double -> double
	{types.TyInt, types.TyInt, types.TyInt, false},          // int * int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},        // int * short -> int
	{types.TyInt, types.TyLong, types.TyLong, false},        // int * long -> long
	{types.TyInt, types.TyChar, types.TyString, false},      // int * char -> string
	{types.TyShort, types.TyDouble, types.TyDouble, false},  // short * double -> double
	{types.TyShort, types.TyInt, types.TyInt, false},        // short * int -> int
	{types.TyShort, types.TyShort, types.TyShort, false},    // short * short -> short
	{types.TyShort, types.TyLong, types.TyLong, false},      // short * long -> long
	{types.TyShort, types.TyChar, types.TyString, false},    // short * char -> string
	{types.TyLong, types.TyDouble, types.TyDouble, false},   // long * double -> double
	{types.TyLong, types.TyInt, types.TyLong, false},        // long * int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},      // long * short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},       // long * long -> long
	{types.TyLong, types.TyChar, types.TyString, false},     // long * char -> string
	{types.TyByte, types.TyByte, types.TyByte, false},       // byte * byte -> byte
}

var divRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // double / double -> double
	{types.TyDouble, types.TyInt, types.TyDouble, false},    // double / int -> double
	{types.TyDouble, types.TyShort, types.TyDouble, false},  // double / short -> double
	{types.TyDouble, types.TyLong, types.TyDouble, false},   // double / long -> double
	{types.TyInt, types.TyDouble, types.TyDouble, false},    // int / double -> double
	{types.TyInt, types.TyInt, types.TyInt, false},          // int / int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},        // int / short -> int
	{types.TyInt, types.TyLong, types.TyLong, false},        // int / long -> long
	{types.TyShort, types.TyDouble, types.TyDouble, false},  // short / double -> double
	{types.TyShort, types.TyInt, types.TyInt, false},        // short / int -> int
	{types.TyShort, types.TyShort, types.TyShort, false},    // short / short -> short
	{types.TyShort, types.TyLong, types.TyLong, false},      // short / long -> long
	{types.TyLong, types.TyDouble, types.TyDouble, false},   // long / double -> double
	{types.TyLong, types.TyInt, types.TyLong, false},        // long / int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},      // long / short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},       // long / long -> long
	{types.TyByte, types.TyByte, types.TyByte, false},       // byte / byte -> byte
}

var remRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // double % double -> double
	{types.TyInt, types.TyInt, types.TyInt, false},          // int % int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},        // int % short -> int
	{types.TyInt, types.TyLong, types.TyInt, false},         // int % long -> int
	{types.TyShort, types.TyInt, types.TyShort, false},      // short % int -> short
	{types.TyShort, types.TyShort, types.TyShort, false},    // short % short -> short
	{types.TyShort, types.TyLong, types.TyShort, false},     // short % long -> short
	{types.TyLong, types.TyInt, types.TyLong, false},        // long % int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},      // long % short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},       // long % long -> long
}

var prefixMinusRules = []UnaryRule{
	{types.TyInt, types.TyInt, false},       // -int -> int
	{types.TyDouble, types.TyDouble, false}, // -double -> double
	{types.TyShort, types.TyShort, false},   // -short -> short
	{types.TyLong, types.TyLong, false},     // -long -> long
}

var prefixPlusPlusRules = []UnaryRule{
	{types.TyInt, types.TyInt, false},     // int++ -> int
	{types.TyShort, types.TyShort, false}, // short++ -> short
	{types.TyLong, types.TyLong, false},   // long++ -> long
}

var prefixMinusMinusRules = []UnaryRule{
	{types.TyInt, types.TyInt, false},     // int-- -> int
	{types.TyShort, types.TyShort, false}, // short-- -> short
	{types.TyLong, types.TyLong, false},   // long-- -> long
}

var prefixNotRules = []UnaryRule{
	{types.TyBool, types.TyBool, false}, // !bool -> bool
}

var prefixBitwiseNotRules = []UnaryRule{
	{types.TyInt, types.TyInt, false},     // ~int -> int
	{types.TyShort, types.TyShort, false}, // ~short -> short
	{types.TyLong, types.TyLong, false},   // ~long -> long
	{types.TyByte, types.TyByte, false},   // ~byte -> byte
}

var postfixPlusPlusRules = []UnaryRule{
	{types.TyInt, types.TyInt, false},     // int++ -> int
	{types.TyShort, types.TyShort, false}, // short++ -> short
	{types.TyLong, types.TyLong, false},   // long++ -> long
}

var postfixMinusMinusRules = []UnaryRule{
	{types.TyInt, types.TyInt, false},     // int-- -> int
	{types.TyShort, types.TyShort, false}, // short-- -> short
	{types.TyLong, types.TyLong, false},   // long-- -> long
}

var castRules = []BinaryRule{
	{types.TyDouble, types.TyDouble, types.TyDouble, false}, // (double) double -> double
	{types.TyInt, types.TyDouble, types.TyInt, false},       // (int) double -> int
	{types.TyInt, types.TyInt, types.TyInt, false},          // (int) int -> int
	{types.TyInt, types.TyShort, types.TyInt, false},        // (int) short -> int
	{types.TyInt, types.TyLong, types.TyInt, false},         // (int) long -> int
	{types.TyInt, types.TyByte, types.TyInt, false},         // (int) byte -> int
	{types.TyInt, types.TyChar, types.TyInt, false},         // (int) char -> int
	{types.TyShort, types.TyDouble, types.TyShort, false},   // (short) double -> short
	{types.TyShort, types.TyInt, types.TyShort, false},      // (short) int -> short
	{types.TyShort, types.TyShort, types.TyShort, false},    // (short) short -> short
	{types.TyShort, types.TyLong, types.TyShort, false},     // (short) long -> short
	{types.TyLong, types.TyDouble, types.TyLong, false},     // (long) double -> long
	{types.TyLong, types.TyInt, types.TyLong, false},        // (long) int -> long
	{types.TyLong, types.TyShort, types.TyLong, false},      // (long) short -> long
	{types.TyLong, types.TyLong, types.TyLong, false},       // (long) long -> long
	{types.TyByte, types.TyInt, types.TyByte, false},        // (byte) int -> byte
	{types.TyByte, types.TyByte, types.TyByte, false},       // (byte) byte -> byte
	{types.TyByte, types.TyChar, types.TyByte, false},       // (byte) char -> byte
	{types.TyChar, types.TyInt, types.TyChar, false},        // (char) int -> char
	{types.TyChar, types.TyShort, types.TyChar, false},      // (char) short -> char
	{types.TyChar, types.TyLong, types.TyChar, false},       // (char) long -> char
	{types.TyChar, types.TyByte, types.TyChar, false},       // (char) byte -> char
	{types.TyChar, types.TyChar, types.TyChar, false},       // (char) char -> char
	{types.TyString, types.TyString, types.TyString, false}, // (string) string -> string
	{types.TyBool, types.TyBool, types.TyBool, false},       // (bool) bool -> bool
}
