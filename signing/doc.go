// Package signing resolves the credentials an Android release build signs
// with.
//
// Four secrets are resolved: the keystore path, the keystore password, the
// key alias and the key password. Each is looked up through an ordered chain
// of providers and the first present value wins. When nothing in the chain
// has a value the secret resolves to the empty string. Resolution never
// fails: a missing or broken properties file simply contributes nothing.
//
// The default layout reads the environment first and key.properties second:
//
//	KEYSTORE_PATH      -> storeFile
//	KEYSTORE_PASSWORD  -> storePassword
//	KEY_ALIAS          -> keyAlias
//	KEYSTORE_PASSWORD  -> keyPassword
//
// KEYSTORE_PASSWORD feeds both passwords. A YAML layout loaded with
// LoadLayout can give each secret its own chain, including extra providers
// such as a Vault KV secret.
package signing
