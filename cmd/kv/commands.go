package kv

import (
	"encoding/json"
	"fmt"

	"github.com/anydict/numstore/lib/store"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key (a value of 0 deletes)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := store.ParseKey(args[0])
			if err != nil {
				return err
			}
			value, err := store.ParseValue(args[1])
			if err != nil {
				return err
			}
			if err := rpcStore.Set(key, value); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key] [default]",
		Short: "Reads the value for a key, falling back to an optional default",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := store.ParseKey(args[0])
			if err != nil {
				return err
			}
			value, found, err := rpcStore.Get(key)
			if err != nil {
				return err
			}
			if !found && len(args) == 2 {
				def, err := store.ParseValue(args[1])
				if err != nil {
					return err
				}
				value = def
			}
			fmt.Printf("key=%d, found=%t, value=%d\n", key, found, value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := store.ParseKey(args[0])
			if err != nil {
				return err
			}
			if err := rpcStore.Delete(key); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	popCmd = &cobra.Command{
		Use:   "pop [key]",
		Short: "Removes and returns the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := store.ParseKey(args[0])
			if err != nil {
				return err
			}
			value, found, err := rpcStore.Pop(key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%d, found=%t, value=%d\n", key, found, value)
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key holds a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := store.ParseKey(args[0])
			if err != nil {
				return err
			}
			found, err := rpcStore.Has(key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%d, found=%t\n", key, found)
			return nil
		},
	}
	lenCmd = &cobra.Command{
		Use:   "len",
		Short: "Prints the number of keys holding a value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rpcStore.Len()
			if err != nil {
				return err
			}
			fmt.Printf("len=%d, capacity=%d\n", n, rpcStore.Capacity())
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes all values from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Clear(); err != nil {
				return err
			}
			fmt.Println("clear successfully")
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Prints all occupied keys in ascending order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := rpcStore.Keys()
			if err != nil {
				return err
			}
			for k := range seq {
				fmt.Println(k)
			}
			return nil
		},
	}
	itemsCmd = &cobra.Command{
		Use:   "items",
		Short: "Prints all (key, value) pairs in ascending key order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := rpcStore.Items()
			if err != nil {
				return err
			}
			for k, v := range seq {
				fmt.Printf("%d=%d\n", k, v)
			}
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints metadata about the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := rpcStore.GetInfo()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
)
